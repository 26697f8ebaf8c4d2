package groups

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/sharediary/internal/app/features/errors"
	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(err, apperr.InvalidArgument, "request body is not valid JSON")
	}
	return nil
}

// pathID parses the named URL parameter as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "invalid "+name)
	}
	return id, nil
}

// actor returns the signed-in user's id, answering 401 itself when there
// is none.
func actor(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := authz.ActorID(r)
	if !ok {
		uierrors.Unauthorized(w, r)
	}
	return id, ok
}
