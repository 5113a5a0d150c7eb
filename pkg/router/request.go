package router

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/rondomundi/backend/pkg/errorx"
)

// decodeRequest fills req from the query string for GET and from the JSON
// body for POST.
func decodeRequest(r *http.Request, method string, req any) error {
	switch method {
	case http.MethodGet:
		return decodeQuery(r, req)

	case http.MethodPost:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Cannot read the request body")
		}

		if len(b) == 0 {
			return nil
		}

		if err := json.Unmarshal(b, req); err != nil {
			return errorx.New(errorx.BadRequest, "Invalid request body")
		}

		return nil
	}

	return errMethodNotAllowed
}

// decodeQuery maps query parameters onto the request struct by json tag.
// Only the field kinds our GET requests use are supported.
func decodeQuery(r *http.Request, req any) error {
	v := reflect.ValueOf(req).Elem()
	for i := 0; i < v.NumField(); i++ {
		name, _, _ := strings.Cut(v.Type().Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		queryVal := r.URL.Query().Get(name)
		if queryVal == "" {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(queryVal)

		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(queryVal, 10, 64)
			if err != nil {
				return errorx.New(errorx.BadRequest, "Invalid value for %s", name)
			}
			field.SetInt(n)

		case reflect.Bool:
			b, err := strconv.ParseBool(queryVal)
			if err != nil {
				return errorx.New(errorx.BadRequest, "Invalid value for %s", name)
			}
			field.SetBool(b)
		}
	}

	return nil
}
