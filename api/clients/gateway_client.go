package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ruteri/celia-media/api"
	"github.com/stretchr/testify/mock"
)

var (
	// ErrNotFound is returned when the gateway answers 404, for an unknown
	// tenant or a missing object.
	ErrNotFound = errors.New("not found")

	// ErrNotRedirect is returned by Resolve for tenants that stream objects
	// instead of redirecting.
	ErrNotRedirect = errors.New("gateway did not redirect")
)

// GatewayClient implements api.ObjectResolver over HTTP.
type GatewayClient struct {
	// ServerAddr is the base URL of the gateway
	ServerAddr string

	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client
}

func (c *GatewayClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// ObjectURL returns the gateway URL for key in tenant. Each path segment of
// key is escaped separately so slashes keep separating segments.
func (c *GatewayClient) ObjectURL(tenant, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.ServerAddr, "/"), url.PathEscape(tenant), strings.Join(segments, "/"))
}

// Resolve requests the object without following the redirect and returns
// the presigned URL from the Location header.
func (c *GatewayClient) Resolve(tenant, key string) (string, error) {
	noFollow := *c.client()
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noFollow.Get(c.ObjectURL(tenant, key))
	if err != nil {
		return "", fmt.Errorf("could not request object: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound:
		location := resp.Header.Get("Location")
		if location == "" {
			return "", errors.New("redirect without Location header")
		}
		return location, nil
	case http.StatusOK:
		return "", fmt.Errorf("%w: tenant %s streams objects", ErrNotRedirect, tenant)
	default:
		return "", responseError(resp)
	}
}

// Fetch downloads the object into w, following redirects.
func (c *GatewayClient) Fetch(tenant, key string, w io.Writer) (int64, error) {
	resp, err := c.client().Get(c.ObjectURL(tenant, key))
	if err != nil {
		return 0, fmt.Errorf("could not request object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, responseError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("could not read object: %w", err)
	}
	return n, nil
}

// Tenants lists the tenants the gateway serves.
func (c *GatewayClient) Tenants() ([]api.TenantInfo, error) {
	resp, err := c.client().Get(strings.TrimRight(c.ServerAddr, "/") + "/tenants")
	if err != nil {
		return nil, fmt.Errorf("could not request tenants: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var tenants []api.TenantInfo
	if err := json.NewDecoder(resp.Body).Decode(&tenants); err != nil {
		return nil, fmt.Errorf("could not parse tenants response: %w", err)
	}
	return tenants, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return fmt.Errorf("gateway returned error %d: %s", resp.StatusCode, msg)
}

var _ api.ObjectResolver = (*GatewayClient)(nil)

// MockObjectResolver implements a mock api.ObjectResolver for testing.
type MockObjectResolver struct {
	mock.Mock
}

func (m *MockObjectResolver) Resolve(tenant, key string) (string, error) {
	args := m.Called(tenant, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectResolver) Fetch(tenant, key string, w io.Writer) (int64, error) {
	args := m.Called(tenant, key, w)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockObjectResolver) Tenants() ([]api.TenantInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.TenantInfo), args.Error(1)
}
