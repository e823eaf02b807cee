package grpcx

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultUnaryTimeout = 10 * time.Second

// UnaryServerInterceptor: логирование, recovery и timeout guard, если у вызова нет deadline
func UnaryServerInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = DefaultUnaryTimeout
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				slog.Error("grpc unary panic",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal server error")
			}
			logCall(ctx, "grpc unary", info.FullMethod, start, err)
		}()

		return handler(ctx, req)
	}
}

func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				slog.Error("grpc stream panic",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal server error")
			}
			logCall(ss.Context(), "grpc stream", info.FullMethod, start, err)
		}()

		return handler(srv, ss)
	}
}

// logCall: пробы health идут часто, поэтому успешные вызовы - на debug
func logCall(ctx context.Context, msg, method string, start time.Time, err error) {
	code := status.Code(err)
	lvl := slog.LevelDebug
	switch code {
	case codes.OK, codes.Canceled, codes.NotFound:
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	slog.Log(ctx, lvl, msg,
		"method", method,
		"code", code.String(),
		"dur_ms", time.Since(start).Milliseconds(),
		"err", errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
