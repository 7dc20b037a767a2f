package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bistro/internal/domain/task"
)

const maxBodyBytes = 1 << 20

// taskInput is the body of create and update requests.
type taskInput struct {
	Title       string
	Description string
	Done        bool
}

func decodeTaskInput(data []byte) (taskInput, error) {
	var in taskInput
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			in.Title, err = d.Str()
		case "description":
			if d.Next() == jx.Null {
				return d.Null()
			}
			in.Description, err = d.Str()
		case "done":
			in.Done, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return taskInput{}, err
	}
	return in, nil
}

func writeTask(e *jx.Encoder, t *task.Task) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(t.ID)
	e.FieldStart("title")
	e.Str(t.Title)
	e.FieldStart("description")
	e.Str(t.Description)
	e.FieldStart("done")
	e.Bool(t.Done)
	e.FieldStart("createdAt")
	e.Str(t.CreatedAt.UTC().Format(time.RFC3339))
	e.FieldStart("updatedAt")
	e.Str(t.UpdatedAt.UTC().Format(time.RFC3339))
	e.ObjEnd()
}

func encodeTask(t *task.Task) *jx.Encoder {
	e := jx.GetEncoder()
	writeTask(e, t)
	return e
}

func encodeTasks(tasks []task.Task) *jx.Encoder {
	e := jx.GetEncoder()
	e.ArrStart()
	for i := range tasks {
		writeTask(e, &tasks[i])
	}
	e.ArrEnd()
	return e
}

// writeJSON writes e and returns it to the pool.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	defer jx.PutEncoder(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	e := jx.GetEncoder()
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, status, e)
}

// writeDomainError maps service errors to HTTP responses. Unknown errors are
// logged and reported as 500 without details.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *task.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, task.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return body, true
}
