package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDoer lets tests stub the outbound client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPRelationshipChecker asks the profile service whether a guardian
// owns a dependent. 200 means yes, 404 means no; anything else is a
// lookup fault and the caller fails closed.
type HTTPRelationshipChecker struct {
	client  HTTPDoer
	baseURL string
}

func NewHTTPRelationshipChecker(client HTTPDoer, baseURL string) *HTTPRelationshipChecker {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
			Timeout: 8 * time.Second,
		}
	}
	return &HTTPRelationshipChecker{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPRelationshipChecker) VerifyGuardianOfDependent(ctx context.Context, guardianID, dependentID string) (bool, error) {
	if c.baseURL == "" {
		return false, errors.New("ownership lookup not configured")
	}

	u := fmt.Sprintf("%s/internal/guardians/%s/children/%s",
		c.baseURL, url.PathEscape(guardianID), url.PathEscape(dependentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("ownership lookup status %d", res.StatusCode)
	}
}
