package handlers

import (
	"net/http"

	"media-pipeline/internal/codec"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/transcoder"
)

// KindInfo describes one media kind.
type KindInfo struct {
	Kind       mediatypes.MediaKind `json:"kind"`
	Extensions []string             `json:"extensions"`
}

// FormatsResponse lists what the pipeline can do.
type FormatsResponse struct {
	Kinds         []KindInfo             `json:"kinds"`
	Operations    []transcoder.Operation `json:"operations"`
	Registrations []codec.Registration   `json:"registrations"`
}

// GetFormats returns the kinds, operations and codec registrations.
func (h *Handlers) GetFormats(w http.ResponseWriter, _ *http.Request) {
	kinds := mediatypes.Kinds()
	resp := FormatsResponse{
		Kinds:         make([]KindInfo, 0, len(kinds)),
		Operations:    transcoder.Operations(),
		Registrations: h.transcoder.Registry().Formats(),
	}
	for _, k := range kinds {
		exts := mediatypes.Extensions(k)
		if exts == nil {
			exts = []string{}
		}
		resp.Kinds = append(resp.Kinds, KindInfo{Kind: k, Extensions: exts})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, resp)
}
