package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
	"github.com/nyashahama/scas-screening-backend/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ScreeningService is the fully qualified gRPC service name.
const ScreeningService = "scas.v1.Screening"

// PreviewMethod is the full method name of the Preview RPC.
const PreviewMethod = "/" + ScreeningService + "/Preview"

// Previewer scores answers without persisting them. *screening.Service
// satisfies it.
type Previewer interface {
	Preview(ctx context.Context, raw []scoring.RawAnswer) (screening.Result, error)
}

// ScreeningServer is the server API for scas.v1.Screening. Requests and
// responses are google.protobuf.Struct values with the same shape as the
// HTTP preview endpoint.
type ScreeningServer interface {
	Preview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterScreeningServer registers srv with s.
func RegisterScreeningServer(s grpc.ServiceRegistrar, srv ScreeningServer) {
	s.RegisterService(&screeningServiceDesc, srv)
}

var screeningServiceDesc = grpc.ServiceDesc{
	ServiceName: ScreeningService,
	HandlerType: (*ScreeningServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Preview", Handler: previewHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scas/v1/screening.proto",
}

func previewHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScreeningServer).Preview(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreviewMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScreeningServer).Preview(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ─── IMPLEMENTATION ──────────────────────────────────────────────────────────

type screeningServer struct {
	previewer Previewer
}

type previewRequest struct {
	Answers []struct {
		ItemID json.RawMessage `json:"item_id"`
		Value  json.RawMessage `json:"value"`
	} `json:"answers"`
}

type previewResponse struct {
	TotalScore int                    `json:"total_score"`
	Subscales  scoring.SubscaleScores `json:"subscales"`
	Level      scoring.Level          `json:"level"`
	ML         classifier.Output      `json:"ml"`
}

func (s *screeningServer) Preview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	b, err := protojson.Marshal(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed request")
	}
	var req previewRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "answers must be a list of {item_id, value}")
	}

	raw := make([]scoring.RawAnswer, len(req.Answers))
	for i, a := range req.Answers {
		raw[i] = scoring.RawAnswer{ItemID: a.ItemID, Value: a.Value}
	}

	res, err := s.previewer.Preview(ctx, raw)
	if err != nil {
		return nil, previewStatus(err)
	}

	return toStruct(previewResponse{
		TotalScore: res.Vector.Total,
		Subscales:  res.Vector.Subscales,
		Level:      res.Level,
		ML:         res.Model,
	})
}

func previewStatus(err error) error {
	var ve *screening.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Reason)
	case errors.Is(err, store.ErrQuestionnaireNotFound):
		return status.Error(codes.NotFound, "questionnaire not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

// ─── INTERCEPTORS ────────────────────────────────────────────────────────────

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
