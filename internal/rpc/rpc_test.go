package rpc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/rpc"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubPreviewer struct {
	err    error
	gotRaw []scoring.RawAnswer
}

func (p *stubPreviewer) Preview(_ context.Context, raw []scoring.RawAnswer) (screening.Result, error) {
	p.gotRaw = raw
	if p.err != nil {
		return screening.Result{}, p.err
	}
	return screening.Result{
		Vector: scoring.ScoreVector{Total: 80, Subscales: scoring.SubscaleScores{GAD: 12}},
		Level:  scoring.LevelHigh,
		Model:  classifier.RuleOutput(scoring.LevelHigh),
	}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

// ─── HELPERS ─────────────────────────────────────────────────────────────────

type harness struct {
	addr      string
	conn      *grpc.ClientConn
	previewer *stubPreviewer
	issuer    *auth.Issuer
}

func startServer(t *testing.T, pinger rpc.Pinger) *harness {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	h := &harness{
		addr:      lis.Addr().String(),
		previewer: &stubPreviewer{},
		issuer:    auth.NewIssuer("test-secret", time.Hour),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := rpc.NewServer(mux, h.previewer, h.issuer, pinger, rpc.Config{}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient(h.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	h.conn = conn

	t.Cleanup(func() {
		conn.Close()
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
		if err := <-served; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return h
}

func (h *harness) bearer(t *testing.T) context.Context {
	t.Helper()
	tok, err := h.issuer.Sign(db.User{ID: uuid.New(), Email: "ana@gmail.com", Role: db.UserRoleStudent})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func previewRequest(t *testing.T) *structpb.Struct {
	t.Helper()
	in, err := structpb.NewStruct(map[string]any{
		"answers": []any{
			map[string]any{"item_id": 1, "value": 3},
			map[string]any{"item_id": "2", "value": "1"},
		},
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return in
}

// ─── TESTS ───────────────────────────────────────────────────────────────────

func TestHTTPAndGRPCShareListener(t *testing.T) {
	h := startServer(t, nil)

	resp, err := http.Get("http://" + h.addr + "/healthz")
	if err != nil {
		t.Fatalf("http get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 over HTTP, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := healthpb.NewHealthClient(h.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if got.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", got.Status)
	}
}

func TestHealth_NotServingWhenDatabaseDown(t *testing.T) {
	h := startServer(t, stubPinger{err: errors.New("connection refused")})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := healthpb.NewHealthClient(h.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ScreeningService})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if got.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", got.Status)
	}
}

func TestPreview_ScoresWithoutPersisting(t *testing.T) {
	h := startServer(t, nil)

	ctx, cancel := context.WithTimeout(h.bearer(t), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	if err := h.conn.Invoke(ctx, rpc.PreviewMethod, previewRequest(t), out); err != nil {
		t.Fatalf("preview: %v", err)
	}

	if len(h.previewer.gotRaw) != 2 || string(h.previewer.gotRaw[1].ItemID) != `"2"` {
		t.Errorf("raw answers: %+v", h.previewer.gotRaw)
	}
	m := out.AsMap()
	if m["level"] != "high" || m["total_score"] != float64(80) {
		t.Errorf("response: %v", m)
	}
	ml, _ := m["ml"].(map[string]any)
	if ml["source"] != "rule" || ml["pred"] != "high" {
		t.Errorf("ml: %v", ml)
	}
}

func TestPreview_RequiresBearerToken(t *testing.T) {
	h := startServer(t, nil)

	other := auth.NewIssuer("other-secret", time.Hour)
	foreign, _ := other.Sign(db.User{ID: uuid.New(), Role: db.UserRoleAdmin})

	for name, ctx := range map[string]context.Context{
		"missing": context.Background(),
		"foreign": metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+foreign),
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := h.conn.Invoke(ctx, rpc.PreviewMethod, previewRequest(t), new(structpb.Struct))
			if status.Code(err) != codes.Unauthenticated {
				t.Fatalf("expected Unauthenticated, got %v", err)
			}
		})
	}
}

func TestPreview_ValidationErrorIsInvalidArgument(t *testing.T) {
	h := startServer(t, nil)
	h.previewer.err = &screening.ValidationError{Reason: "no valid answers", Err: scoring.ErrEmptySubmission}

	ctx, cancel := context.WithTimeout(h.bearer(t), 5*time.Second)
	defer cancel()
	err := h.conn.Invoke(ctx, rpc.PreviewMethod, previewRequest(t), new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if status.Convert(err).Message() != "no valid answers" {
		t.Errorf("message: %q", status.Convert(err).Message())
	}
}

func TestPreview_InternalErrorIsOpaque(t *testing.T) {
	h := startServer(t, nil)
	h.previewer.err = errors.New("pq: relation missing")

	ctx, cancel := context.WithTimeout(h.bearer(t), 5*time.Second)
	defer cancel()
	err := h.conn.Invoke(ctx, rpc.PreviewMethod, previewRequest(t), new(structpb.Struct))
	if status.Code(err) != codes.Internal || status.Convert(err).Message() != "internal server error" {
		t.Fatalf("expected opaque Internal, got %v", err)
	}
}
