// Client for the Jellyfin HTTP API. It is stateless: every call receives
// the server address and credentials it needs, and translates transport
// failures into the typed errors in errors.go.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vrsandeep/truphotos-go/internal/models"
)

const (
	appName    = "TruPhotos"
	appVersion = "1.0.0"
)

// Client issues authenticated requests against a Jellyfin server.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	deviceID   string
}

// AuthResult is the outcome of a successful authentication.
type AuthResult struct {
	User        models.User
	AccessToken string
	ServerID    string
	ServerName  string
}

// Page is one bounded slice of a library's photo catalog.
type Page struct {
	Items      []models.Photo
	TotalCount int
	Offset     int
}

// New creates a client. deviceID identifies this installation to the server
// and should be stable across restarts.
func New(deviceID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		deviceID:   deviceID,
	}
}

func (c *Client) headers(token string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Emby-Authorization", fmt.Sprintf(
		`MediaBrowser Client="%s", Device="Go", DeviceId="%s", Version="%s"`,
		appName, c.deviceID, appVersion))
	if token != "" {
		h.Set("X-Emby-Token", token)
	}
	return h
}

// do runs one request under the client's per-call timeout.
func (c *Client) do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, translateErr(op, err)
	}
	// Tie the context's lifetime to the body so callers can stream it.
	resp.Body = &cancelOnClose{rc: resp.Body, cancel: cancel}
	return resp, nil
}

// Authenticate logs in with username and password.
func (c *Client) Authenticate(ctx context.Context, address, username, password string) (*AuthResult, error) {
	body, _ := json.Marshal(authRequest{Username: username, Pw: password})
	req, err := http.NewRequest("POST", address+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Op: "authenticate", Err: err}
	}
	req.Header = c.headers("")

	resp, err := c.do(ctx, "authenticate", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AuthError{Status: resp.StatusCode}
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, &NetworkError{Op: "authenticate", Err: err}
	}
	return &AuthResult{
		User: models.User{
			ID:         ar.User.ID,
			Name:       ar.User.Name,
			ServerID:   ar.User.ServerID,
			ServerName: ar.User.ServerName,
		},
		AccessToken: ar.AccessToken,
		ServerID:    ar.ServerID,
		ServerName:  ar.User.ServerName,
	}, nil
}

// GetPublicInfo fetches server info without authentication.
func (c *Client) GetPublicInfo(ctx context.Context, address string) (*PublicInfo, error) {
	req, err := http.NewRequest("GET", address+"/System/Info/Public", nil)
	if err != nil {
		return nil, &NetworkError{Op: "public info", Err: err}
	}
	req.Header = c.headers("")

	resp, err := c.do(ctx, "public info", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: "public info", Status: resp.StatusCode}
	}

	var info PublicInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &NetworkError{Op: "public info", Err: err}
	}
	return &info, nil
}

// TestConnection reports whether a server answers its public info endpoint.
func (c *Client) TestConnection(ctx context.Context, server models.Server) bool {
	_, err := c.GetPublicInfo(ctx, server.Address)
	return err == nil
}

// ListLibraries returns the photo libraries visible to the user. Jellyfin
// files photos under 'homevideos' collections, so that type is included
// wholesale and the user picks from the result.
func (c *Client) ListLibraries(ctx context.Context, server models.Server, userID, token string) ([]models.Library, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/Users/%s/Views", server.Address, userID), nil)
	if err != nil {
		return nil, &NetworkError{Op: "list libraries", Err: err}
	}
	req.Header = c.headers(token)

	resp, err := c.do(ctx, "list libraries", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: "list libraries", Status: resp.StatusCode}
	}

	var views viewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		return nil, &NetworkError{Op: "list libraries", Err: err}
	}

	var libraries []models.Library
	for _, item := range views.Items {
		if !isPhotoLibrary(item) {
			continue
		}
		collectionType := item.CollectionType
		if collectionType == "" {
			collectionType = "photos"
		}
		libraries = append(libraries, models.Library{
			ID:             item.ID,
			Name:           item.Name,
			CollectionType: collectionType,
		})
	}
	return libraries, nil
}

func isPhotoLibrary(item libraryItem) bool {
	switch strings.ToLower(item.CollectionType) {
	case "homevideos", "photos", "photo":
		return true
	case "":
		name := strings.ToLower(item.Name)
		return strings.Contains(name, "photo") ||
			strings.Contains(name, "picture") ||
			strings.Contains(name, "image")
	}
	return false
}

// ListPhotos fetches one page of a library's photos, sorted newest first by
// the server. The server's sort order is authoritative.
func (c *Client) ListPhotos(ctx context.Context, server models.Server, userID, token, libraryID string, offset, limit int) (*Page, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/Users/%s/Items", server.Address, userID), nil)
	if err != nil {
		return nil, &NetworkError{Op: "list photos", Err: err}
	}
	req.Header = c.headers(token)

	q := url.Values{}
	q.Set("ParentId", libraryID)
	q.Set("IncludeItemTypes", "Photo")
	q.Set("Recursive", "true")
	q.Set("Fields", "Path,MediaSources,DateCreated,PremiereDate")
	q.Set("StartIndex", strconv.Itoa(offset))
	q.Set("Limit", strconv.Itoa(limit))
	q.Set("SortBy", "DateCreated,PremiereDate")
	q.Set("SortOrder", "Descending")
	req.URL.RawQuery = q.Encode()

	resp, err := c.do(ctx, "list photos", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: "list photos", Status: resp.StatusCode}
	}

	var items itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &NetworkError{Op: "list photos", Err: err}
	}

	return &Page{
		Items:      convertPhotos(items.Items, server, token),
		TotalCount: items.TotalRecordCount,
		Offset:     offset,
	}, nil
}

// SetFavorite marks or unmarks a photo as a favorite.
func (c *Client) SetFavorite(ctx context.Context, server models.Server, userID, token, itemID string, favorite bool) error {
	method := "POST"
	if !favorite {
		method = "DELETE"
	}
	req, err := http.NewRequest(method, fmt.Sprintf("%s/Users/%s/FavoriteItems/%s", server.Address, userID, itemID), nil)
	if err != nil {
		return &NetworkError{Op: "set favorite", Err: err}
	}
	req.Header = c.headers(token)

	resp, err := c.do(ctx, "set favorite", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{Op: "set favorite", Status: resp.StatusCode}
	}
	return nil
}

type cancelOnClose struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *cancelOnClose) Close() error {
	c.cancel()
	return c.rc.Close()
}
