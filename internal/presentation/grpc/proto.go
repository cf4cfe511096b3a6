package grpc

// proto.go holds the hand-written service descriptor for risk/v1/risk.proto.
// Messages travel with the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "risk.v1.RiskService"

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	ScoreTransaction(context.Context, *ScoreTransactionRequest) (*ScoreTransactionResponse, error)
	GetRiskHistory(context.Context, *GetRiskHistoryRequest) (*GetRiskHistoryResponse, error)
	ResetHistory(context.Context, *ResetHistoryRequest) (*ResetHistoryResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible default implementations.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) ScoreTransaction(context.Context, *ScoreTransactionRequest) (*ScoreTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreTransaction not implemented")
}
func (UnimplementedRiskServiceServer) GetRiskHistory(context.Context, *GetRiskHistoryRequest) (*GetRiskHistoryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRiskHistory not implemented")
}
func (UnimplementedRiskServiceServer) ResetHistory(context.Context, *ResetHistoryRequest) (*ResetHistoryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ResetHistory not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers the RiskServiceServer with the gRPC server.
func RegisterRiskServiceServer(s *grpclib.Server, srv RiskServiceServer) {
	s.RegisterService(&riskServiceDesc, srv)
}

var riskServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ScoreTransaction", Handler: scoreTransactionHandler},
		{MethodName: "GetRiskHistory", Handler: getRiskHistoryHandler},
		{MethodName: "ResetHistory", Handler: resetHistoryHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "risk/v1/risk.proto",
}

func scoreTransactionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(ScoreTransactionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ScoreTransaction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ScoreTransaction"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).ScoreTransaction(ctx, req.(*ScoreTransactionRequest))
	})
}

func getRiskHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetRiskHistoryRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).GetRiskHistory(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetRiskHistory"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).GetRiskHistory(ctx, req.(*GetRiskHistoryRequest))
	})
}

func resetHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(ResetHistoryRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ResetHistory(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ResetHistory"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).ResetHistory(ctx, req.(*ResetHistoryRequest))
	})
}
