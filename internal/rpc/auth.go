package rpc

import (
	"context"
	"errors"
	"strings"

	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKeyClaims struct{}

// ClaimsFrom returns the verified token claims of an authenticated call.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims{}).(*auth.Claims)
	return c, ok
}

// authInterceptor requires a bearer token in the "authorization" metadata on
// every unary call except the health service.
func authInterceptor(issuer *auth.Issuer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		var header string
		if v := md.Get("authorization"); len(v) > 0 {
			header = v[0]
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		claims, err := issuer.Verify(token)
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(context.WithValue(ctx, ctxKeyClaims{}, claims), req)
	}
}
