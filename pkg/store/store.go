package store

import (
	"time"

	cache_pkg "github.com/patrickmn/go-cache"

	"github.com/kumarabd/triage-plane/pkg/normalize"
)

const currentKey = "current"

// Dataset is one uploaded batch together with its source name. It is the
// only shared mutable reference in the service; the handler below owns all
// access to it between requests.
type Dataset struct {
	Filename   string           `json:"filename"`
	Batch      *normalize.Batch `json:"-"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

type Handler struct {
	client *cache_pkg.Cache
}

func New() (*Handler, error) {
	client := cache_pkg.New(cache_pkg.NoExpiration, 0)
	return &Handler{
		client: client,
	}, nil
}

// Put replaces the currently loaded dataset.
func (h *Handler) Put(dataset *Dataset) {
	h.client.Set(currentKey, dataset, cache_pkg.NoExpiration)
}

// Current returns the currently loaded dataset, if any.
func (h *Handler) Current() (*Dataset, bool) {
	item, found := h.client.Get(currentKey)
	if !found {
		return nil, false
	}
	dataset, ok := item.(*Dataset)
	if !ok {
		return nil, false
	}
	return dataset, true
}

func (h *Handler) Ping() (bool, error) {
	return true, nil
}
