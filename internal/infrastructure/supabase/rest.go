package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

const (
	restPrefix           = "/rest/v1/"
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
)

// RestClient is a datastore.Store backed by PostgREST.
type RestClient struct {
	*client
	tokens TokenSource
}

var _ datastore.Store = (*RestClient)(nil)

func NewRestClient(cfg ClientConfig, tokens TokenSource) (*RestClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &RestClient{client: c, tokens: tokens}, nil
}

func (c *RestClient) Select(ctx context.Context, table string, query datastore.Query) ([]datastore.Row, error) {
	values := url.Values{}
	values.Set("select", "*")
	if err := addFilters(values, query.Filters); err != nil {
		return nil, err
	}
	if query.Order != nil {
		if !datastore.ValidIdentifier(query.Order.Column) {
			return nil, fmt.Errorf("%w: invalid order column %q", usecase.ErrInvalidInput, query.Order.Column)
		}
		direction := "asc"
		if query.Order.Descending {
			direction = "desc"
		}
		values.Set("order", query.Order.Column+"."+direction)
	}

	token := c.token(ctx)
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	key := path + "?" + values.Encode() + "#" + token
	raw, _, err := c.flight.DoContext(ctx, key, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, request{method: http.MethodGet, path: path, query: values, token: token})
	})
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

func (c *RestClient) Insert(ctx context.Context, table string, rows []datastore.Row) ([]datastore.Row, error) {
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, encodeRow(row))
	}

	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body:   payload,
		token:  c.token(ctx),
		prefer: preferRepresentation,
	})
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

func (c *RestClient) Update(ctx context.Context, table string, patch datastore.Row, filters []datastore.Filter) ([]datastore.Row, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: update requires a filter", usecase.ErrInvalidInput)
	}
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	if err := addFilters(values, filters); err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   path,
		query:  values,
		body:   encodeRow(patch),
		token:  c.token(ctx),
		prefer: preferRepresentation,
	})
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

func (c *RestClient) Delete(ctx context.Context, table string, filters []datastore.Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("%w: delete requires a filter", usecase.ErrInvalidInput)
	}
	path, err := tablePath(table)
	if err != nil {
		return err
	}
	values := url.Values{}
	if err := addFilters(values, filters); err != nil {
		return err
	}

	_, err = c.do(ctx, request{
		method: http.MethodDelete,
		path:   path,
		query:  values,
		token:  c.token(ctx),
		prefer: preferMinimal,
	})
	return err
}

func (c *RestClient) token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken(ctx)
}

func tablePath(table string) (string, error) {
	if !datastore.ValidIdentifier(table) {
		return "", fmt.Errorf("%w: invalid table name %q", usecase.ErrInvalidInput, table)
	}
	return restPrefix + table, nil
}

func addFilters(values url.Values, filters []datastore.Filter) error {
	for _, f := range filters {
		if !datastore.ValidIdentifier(f.Column) {
			return fmt.Errorf("%w: invalid filter column %q", usecase.ErrInvalidInput, f.Column)
		}
		if f.Value == nil {
			values.Add(f.Column, "is.null")
			continue
		}
		values.Add(f.Column, "eq."+formatValue(f.Value))
	}
	return nil
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// encodeRow renders timestamps as RFC 3339 strings for PostgREST.
func encodeRow(row datastore.Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if at, ok := v.(time.Time); ok {
			out[k] = at.UTC().Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}

func decodeRows(raw []byte) ([]datastore.Row, error) {
	if len(raw) == 0 {
		return []datastore.Row{}, nil
	}
	var rows []datastore.Row
	if err := sonic.Unmarshal(raw, &rows); err != nil {
		return nil, crerr.Wrap(err, "decode postgrest rows")
	}
	if rows == nil {
		rows = []datastore.Row{}
	}
	return rows, nil
}
