// Package overpass fetches the trees currently mapped in OpenStreetMap from
// an Overpass API instance.
package overpass

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/osmhh/treesync/internal/osmfile"
	"github.com/osmhh/treesync/internal/transport"
	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/logging"
	"github.com/osmhh/treesync/pkg/records"
)

// Service names Overpass in errors and logs.
const Service = "overpass"

// areaOffset turns a relation id into the id of its Overpass area.
const areaOffset = 3600000000

// Client queries an Overpass API endpoint.
type Client struct {
	endpoint string
	http     *transport.Client
}

// New creates a client for endpoint. An empty endpoint uses the public
// overpass-api.de instance.
func New(endpoint string, opts ...transport.Option) *Client {
	if endpoint == "" {
		endpoint = constants.DefaultOverpassURL
	}
	return &Client{endpoint: endpoint, http: transport.New(Service, opts...)}
}

// TreesQuery returns the query for all tree nodes inside the area of an
// OSM relation, with metadata so versions and timestamps are known.
func TreesQuery(relation int64) string {
	return fmt.Sprintf(`[out:xml][timeout:900];
area(%d)->.searchArea;
node["natural"="tree"](area.searchArea);
out meta;`, areaOffset+relation)
}

// Fetch runs query and returns the raw OSM XML response. A response that
// reports a runtime error, e.g. a timeout, is incomplete and rejected.
func (c *Client) Fetch(ctx context.Context, query string) ([]byte, error) {
	logger := logging.FromContext(ctx)
	logger.Debug().Str("endpoint", c.endpoint).Str("query", query).Msg("Querying Overpass")

	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		form := url.Values{"data": {query}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", c.endpoint, err)
	}
	if remark := runtimeError(body); remark != "" {
		return nil, &errors.APIError{
			Service:    Service,
			StatusCode: resp.StatusCode,
			Message:    remark,
			Endpoint:   c.endpoint,
		}
	}

	logger.Debug().Int("bytes", len(body)).Msg("Overpass response received")
	return body, nil
}

// Trees fetches all tree nodes inside the area of an OSM relation.
func (c *Client) Trees(ctx context.Context, relation int64) ([]*records.Target, error) {
	body, err := c.Fetch(ctx, TreesQuery(relation))
	if err != nil {
		return nil, err
	}
	return osmfile.Decode(ctx, bytes.NewReader(body))
}

var remarkPattern = regexp.MustCompile(`(?s)<remark>\s*(.*?)\s*</remark>`)

// runtimeError returns the text of an Overpass error remark.
func runtimeError(body []byte) string {
	m := remarkPattern.FindSubmatch(body)
	if m == nil {
		return ""
	}
	if remark := string(m[1]); strings.Contains(remark, "error") {
		return remark
	}
	return ""
}
