package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jaekwang-park/task-api/internal/service"
)

const maxBodySize = 1 << 20 // 1 MB

// decodeJSON reads a single JSON value from the capped request body. An
// empty body decodes as an empty object. Malformed JSON or anything after
// the first value writes a 400 and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// optionalString records whether a JSON field was present, whether it was
// null, and whether it held something other than a string. A wrong type
// marks the field malformed instead of failing the decode.
type optionalString struct {
	set       bool
	malformed bool
	value     *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.set = true
	o.value = nil
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		o.malformed = true
		return nil
	}
	o.value = &s
	return nil
}

// String returns the value, or "" when absent or null.
func (o optionalString) String() string {
	if o.value == nil {
		return ""
	}
	return *o.value
}

func (o optionalString) toService() service.Optional {
	return service.Optional{Set: o.set, Value: o.value}
}

// queryInt returns the integer query parameter or 0 when absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
