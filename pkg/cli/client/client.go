/* Copyright 2025 Dreambuilder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package client provides the interface for interacting with the Dreambuilder
// server and the data structures for its responses
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrInvalidLogin is an error for invalid credentials for login
var ErrInvalidLogin = errors.New("wrong credentials")

// ErrContentTypeMismatch is an error for a response in an unexpected format
var ErrContentTypeMismatch = errors.New("content type mismatch")

// ErrNoSession is an error for an authorized request made without a session
var ErrNoSession = errors.New("no session key found")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

var contentTypeApplicationJSON = "application/json"
var contentTypeNone = ""

// requestOptions contains options for requests
type requestOptions struct {
	HTTPClient *http.Client
	// ExpectedContentType is the Content-Type that the client is expecting from the server
	ExpectedContentType *string
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

// Client talks to the API of a Dreambuilder server. It is the remote store
// used by the sync orchestrator.
type Client struct {
	Endpoint   string
	Version    string
	SessionKey string
	HTTPClient *http.Client
}

// New returns a client for the given API endpoint
func New(endpoint, version, sessionKey string, hc *http.Client) *Client {
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Version:    version,
		SessionKey: sessionKey,
		HTTPClient: hc,
	}
}

func (c *Client) getHTTPClient(options *requestOptions) *http.Client {
	if options != nil && options.HTTPClient != nil {
		return options.HTTPClient
	}

	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return &http.Client{}
}

func getExpectedContentType(options *requestOptions) string {
	if options != nil && options.ExpectedContentType != nil {
		return *options.ExpectedContentType
	}

	return contentTypeApplicationJSON
}

func (c *Client) getReq(ctx context.Context, path, method string, body []byte) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.Endpoint, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", c.Version)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}

	if c.SessionKey != "" {
		credential := fmt.Sprintf("Bearer %s", c.SessionKey)
		req.Header.Set("Authorization", credential)
	}

	return req, nil
}

// checkRespErr checks if the given http response indicates an error and
// returns an HTTPError holding the response body if so
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	bodyStr := string(body)
	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(bodyStr, "\n"),
	}
}

func checkContentType(res *http.Response, options *requestOptions) error {
	expected := getExpectedContentType(options)

	got := res.Header.Get("Content-Type")
	if got != expected {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, expected)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint. The
// caller closes the body of the returned response.
func (c *Client) doReq(ctx context.Context, method, path string, body []byte, options *requestOptions) (*http.Response, error) {
	req, err := c.getReq(ctx, path, method, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	hc := c.getHTTPClient(options)
	res, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		res.Body.Close()
		return nil, errors.Wrap(err, "server responded with an error")
	}

	if err = checkContentType(res, options); err != nil {
		res.Body.Close()
		return nil, errors.Wrap(err, "unexpected Content-Type")
	}

	return res, nil
}

// doAuthorizedReq does a http request to the given path in the api endpoint
// as a user. The given path should include the preceding slash.
func (c *Client) doAuthorizedReq(ctx context.Context, method, path string, body []byte, options *requestOptions) (*http.Response, error) {
	if c.SessionKey == "" {
		return nil, ErrNoSession
	}

	return c.doReq(ctx, method, path, body, options)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, dest interface{}) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshaling payload")
		}
		body = b
	}

	res, err := c.doAuthorizedReq(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decoding payload")
	}

	return nil
}

// RespArea is an area in a snapshot response
type RespArea struct {
	UUID       string       `json:"uuid"`
	Name       string       `json:"name"`
	Icon       string       `json:"icon"`
	Goal       string       `json:"goal"`
	Progress   int          `json:"progress"`
	TimeSpent  float64      `json:"time_spent"`
	Milestones int          `json:"milestones"`
	Streak     int          `json:"streak"`
	Tasks      []model.Task `json:"tasks"`
}

// toArea converts the area into the local model under the given key
func (a RespArea) toArea(key string) model.Area {
	tasks := a.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}

	return model.Area{
		ID:         key,
		Name:       a.Name,
		Icon:       a.Icon,
		Goal:       a.Goal,
		Progress:   a.Progress,
		TimeSpent:  a.TimeSpent,
		Milestones: a.Milestones,
		Streak:     a.Streak,
		Tasks:      tasks,
	}
}

// GetSnapshotResp is the response from the get snapshot endpoint
type GetSnapshotResp struct {
	Areas map[string]RespArea `json:"areas"`
}

// FetchSnapshot returns the snapshot stored on the server for the user. It
// returns a nil snapshot if the user has no areas.
func (c *Client) FetchSnapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	v := url.Values{}
	v.Set("user_uuid", userID)
	path := fmt.Sprintf("/v1/snapshot?%s", v.Encode())

	var resp GetSnapshotResp
	if err := c.doJSON(ctx, "GET", path, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "fetching snapshot")
	}

	if len(resp.Areas) == 0 {
		return nil, nil
	}

	ret := model.Snapshot{}
	for key, a := range resp.Areas {
		ret[key] = a.toArea(key)
	}

	return ret, nil
}

// UpsertAreaResp is the response from the upsert area endpoint
type UpsertAreaResp struct {
	Area struct {
		UUID string `json:"uuid"`
	} `json:"area"`
}

// UpsertArea creates or updates the scalar fields of the area with the given
// key and returns a handle to its record
func (c *Client) UpsertArea(ctx context.Context, userID, areaKey string, fields model.AreaFields) (model.AreaHandle, error) {
	path := fmt.Sprintf("/v1/areas/%s", url.PathEscape(areaKey))

	var resp UpsertAreaResp
	if err := c.doJSON(ctx, "PUT", path, fields, &resp); err != nil {
		return "", errors.Wrapf(err, "upserting area %s", areaKey)
	}
	if resp.Area.UUID == "" {
		return "", errors.Errorf("no area uuid in the response for %s", areaKey)
	}

	return model.AreaHandle(resp.Area.UUID), nil
}

// ReplaceTasksPayload is a payload for the replace tasks endpoint
type ReplaceTasksPayload struct {
	Tasks []model.Task `json:"tasks"`
}

// ReplaceTasks replaces the task list of the area with the given handle
func (c *Client) ReplaceTasks(ctx context.Context, area model.AreaHandle, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	path := fmt.Sprintf("/v1/areas/%s/tasks", url.PathEscape(string(area)))

	if err := c.doJSON(ctx, "PUT", path, ReplaceTasksPayload{Tasks: tasks}, nil); err != nil {
		return errors.Wrapf(err, "replacing tasks of area %s", area)
	}

	return nil
}

// RespUser is a user in a response
type RespUser struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

// GetMeResp is the response from the me endpoint
type GetMeResp struct {
	User RespUser `json:"user"`
}

// GetMe returns the user of the current session
func (c *Client) GetMe(ctx context.Context) (RespUser, error) {
	var resp GetMeResp
	if err := c.doJSON(ctx, "GET", "/v1/me", nil, &resp); err != nil {
		return RespUser{}, errors.Wrap(err, "getting the current user")
	}

	return resp.User, nil
}

// Ping checks that the server is reachable
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.doReq(ctx, "GET", "/v1/health", nil, nil)
	if err != nil {
		return errors.Wrap(err, "checking server health")
	}
	res.Body.Close()

	return nil
}

// SigninPayload is a payload for /v1/signin
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse is a response from /v1/signin endpoint
type SigninResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
	UserUUID  string `json:"user_uuid"`
}

// Signin requests a session token
func (c *Client) Signin(ctx context.Context, email, password string) (SigninResponse, error) {
	payload := SigninPayload{
		Email:    email,
		Password: password,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := c.doReq(ctx, "POST", "/v1/signin", b, nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsUnauthorized() {
			return SigninResponse{}, ErrInvalidLogin
		}
		return SigninResponse{}, errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	var resp SigninResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return SigninResponse{}, errors.Wrap(err, "decoding payload")
	}

	return resp, nil
}

// Signout deletes the user session on the server side
func (c *Client) Signout(ctx context.Context) error {
	// Share the transport, and thus the rate limiter, but do not follow redirects
	hc := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if c.HTTPClient != nil {
		hc.Transport = c.HTTPClient.Transport
	}

	opts := requestOptions{
		HTTPClient:          hc,
		ExpectedContentType: &contentTypeNone,
	}
	res, err := c.doAuthorizedReq(ctx, "POST", "/v1/signout", nil, &opts)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	res.Body.Close()

	return nil
}
