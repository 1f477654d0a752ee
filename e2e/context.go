package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"

	"ans/internal/ans/deploy"
	"ans/internal/ans/events"
	"ans/internal/ans/handler"
	"ans/internal/ans/registry"
	"ans/internal/ans/storage"
	"ans/internal/ans/store"
	jwttoken "ans/internal/jwt_token"
	"ans/pkg/domain"
	authmw "ans/pkg/platform/middleware/auth"
	"ans/pkg/platform/middleware/request"
)

const signingKey = "e2e-signing-key"

// Well-known actors. The owner deploys and administers the registry.
var actors = map[string]domain.Address{
	"owner": domain.MustParseAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"),
	"acct1": domain.MustParseAddress("0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0"),
	"acct2": domain.MustParseAddress("0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b"),
}

// TestContext holds one scenario's server and the last response.
type TestContext struct {
	server *httptest.Server
	jwt    *jwttoken.JWTService

	storageAddr domain.Address

	lastStatus int
	lastBody   []byte
}

func NewTestContext() *TestContext {
	return &TestContext{jwt: jwttoken.NewJWTService(signingKey, "ans", "ans-api")}
}

// Start serves a registry owned by "owner" whose storage component exists
// but is not yet bound.
func (tc *TestContext) Start(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := store.NewInMemory()
	registryAddr, storageAddr := deploy.Addresses(actors["owner"])

	directory := registry.NewStaticDirectory()
	reg, err := registry.New(registryAddr, actors["owner"], backend, directory, registry.WithLogger(logger))
	if err != nil {
		return err
	}
	st, err := storage.New(ctx, storageAddr, registryAddr, backend, storage.WithLogger(logger))
	if err != nil {
		return err
	}
	directory.Register(storageAddr, st)
	tc.storageAddr = storageAddr

	r := chi.NewRouter()
	r.Use(request.RequestID)
	handler.New(reg, events.NewBus(), logger,
		authmw.RequireCaller(jwttoken.NewJWTServiceAdapter(tc.jwt), logger),
		handler.WithStorage(st),
	).Register(r)
	tc.server = httptest.NewServer(r)
	return nil
}

// StorageComponent is the address of the scenario's storage component.
func (tc *TestContext) StorageComponent() domain.Address {
	return tc.storageAddr
}

func (tc *TestContext) Stop() {
	if tc.server != nil {
		tc.server.Close()
	}
}

// Address returns a known actor's address.
func (tc *TestContext) Address(actor string) (domain.Address, error) {
	addr, ok := actors[actor]
	if !ok {
		return domain.Address{}, fmt.Errorf("unknown actor %q", actor)
	}
	return addr, nil
}

// Do sends a request as actor; an empty actor sends no token.
func (tc *TestContext) Do(method, path, actor string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	if actor != "" {
		addr, err := tc.Address(actor)
		if err != nil {
			return err
		}
		token, err := tc.jwt.GenerateCallerToken(addr, time.Minute)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// ResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w (%s)", err, tc.lastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("response has no %q field: %s", field, tc.lastBody)
	}
	return v, nil
}
