package rest

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/schema"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

const maxDeleteBodySize = 1 << 20 // 1MB

// deleteImagesParams is the query form of DELETE /images: ?id=a&id=b.
type deleteImagesParams struct {
	IDs []string `schema:"id"`
}

func (h *Handler) handleListImages(w http.ResponseWriter, r *http.Request) {
	plan, err := h.engine.ParseValues(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	docs, err := h.images.Find(r.Context(), plan)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	img, err := h.images.Get(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.images.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			h.logger.Error("Image not found", "id", id)
			writeMessage(w, http.StatusNotFound, "Image not found")
			return
		}
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Image deleted successfully")
}

func (h *Handler) handleDeleteImages(w http.ResponseWriter, r *http.Request) {
	ids, verr := h.deleteIDs(w, r)
	if verr != nil {
		writeValidation(w, verr)
		return
	}

	deleted, err := h.images.DeleteMany(r.Context(), ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if deleted == 0 {
		h.logger.Error("No images found to delete", "ids", strings.Join(ids, ", "))
		writeMessage(w, http.StatusNotFound, "No images found to delete")
		return
	}

	writeMessage(w, http.StatusOK, "Images deleted successfully")
}

// pathID validates the {id} path value and writes a 422 when it is not an
// ObjectID.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !primitive.IsValidObjectID(id) {
		verr := &model.ValidationError{}
		verr.Add(model.IssueInvalidValue, model.Path{"id"}, "Invalid ObjectId")
		writeValidation(w, verr)
		return "", false
	}
	return id, true
}

// deleteIDs reads ids from a JSON array body, or from repeated id query
// parameters when the request has no JSON body.
func (h *Handler) deleteIDs(w http.ResponseWriter, r *http.Request) ([]string, *model.ValidationError) {
	verr := &model.ValidationError{}

	var (
		ids  []string
		base model.Path
	)
	if isJSON(r) {
		base = model.Path{}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeleteBodySize))
		if err != nil {
			verr.Add(model.IssueInvalidValue, model.Path{}, "Invalid request body: %v", err)
			return nil, verr
		}
		if err := json.Unmarshal(body, &ids); err != nil {
			verr.Add(model.IssueInvalidType, model.Path{}, "Expected an array of ids")
			return nil, verr
		}
	} else {
		var params deleteImagesParams
		if err := h.decoder.Decode(&params, r.URL.Query()); err != nil {
			addDecodeIssues(verr, err)
			return nil, verr
		}
		ids = params.IDs
		base = model.Path{"id"}
	}

	if len(ids) == 0 {
		verr.Add(model.IssueTooSmall, base, "At least one id is required")
		return nil, verr
	}
	for i, id := range ids {
		if !primitive.IsValidObjectID(id) {
			verr.Add(model.IssueInvalidValue, base.Index(i), "Invalid ObjectId")
		}
	}
	if len(verr.Issues) > 0 {
		return nil, verr
	}
	return ids, nil
}

func addDecodeIssues(verr *model.ValidationError, err error) {
	var multi schema.MultiError
	if errors.As(err, &multi) {
		keys := make([]string, 0, len(multi))
		for key := range multi {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			code := model.IssueInvalidValue
			var unknown schema.UnknownKeyError
			if errors.As(multi[key], &unknown) {
				code = model.IssueUnrecognizedKeys
			}
			verr.Add(code, model.Path{key}, "%v", multi[key])
		}
		return
	}
	verr.Add(model.IssueInvalidValue, model.Path{}, "%v", err)
}

func isJSON(r *http.Request) bool {
	if r.ContentLength == 0 {
		return false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
