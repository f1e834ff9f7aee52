package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ginjson "github.com/gin-gonic/gin/codec/json"
)

var errTrailingData = errors.New("unexpected data after JSON value")

// EchoResponse is what /server_request sends back.
type EchoResponse struct {
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"query_params"`
	Body        any               `json:"body"`
}

// readEcho collects headers, query parameters and, for methods carrying a
// payload, the JSON body of the request.
func readEcho(c *gin.Context) (*EchoResponse, error) {
	req := c.Request

	headers := make(map[string]string, len(req.Header)+1)
	for name, values := range req.Header {
		headers[name] = strings.Join(values, ", ")
	}
	// net/http moves Host out of the header map
	if req.Host != "" {
		headers["Host"] = req.Host
	}

	query := req.URL.Query()
	params := make(map[string]string, len(query))
	for name, values := range query {
		params[name] = values[len(values)-1]
	}

	body, err := readJSONBody(c)
	if err != nil {
		return nil, err
	}

	return &EchoResponse{
		Headers:     headers,
		QueryParams: params,
		Body:        body,
	}, nil
}

func readJSONBody(c *gin.Context) (any, error) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return map[string]any{}, nil
	}

	raw, err := c.GetRawData()
	if err != nil {
		return nil, &InputError{Field: "body", Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	// Numbers stay json.Number so they are echoed digit for digit.
	dec := ginjson.API.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, &InputError{Field: "body", Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &InputError{Field: "body", Err: errTrailingData}
	}
	return body, nil
}
