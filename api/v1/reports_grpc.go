package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	FeedbackReports_ServiceName = "feedback.v1.FeedbackReports"

	FeedbackReports_GetAverages_FullMethodName         = "/feedback.v1.FeedbackReports/GetAverages"
	FeedbackReports_GetPeriodComparison_FullMethodName = "/feedback.v1.FeedbackReports/GetPeriodComparison"
	FeedbackReports_GetDailySeries_FullMethodName      = "/feedback.v1.FeedbackReports/GetDailySeries"
	FeedbackReports_GetCenterStats_FullMethodName      = "/feedback.v1.FeedbackReports/GetCenterStats"
)

// FeedbackReportsClient is the client API for the FeedbackReports service.
type FeedbackReportsClient interface {
	GetAverages(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*AveragesResponse, error)
	GetPeriodComparison(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*PeriodComparisonResponse, error)
	GetDailySeries(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*DailySeriesResponse, error)
	GetCenterStats(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*CenterStatsResponse, error)
}

type feedbackReportsClient struct {
	cc grpc.ClientConnInterface
}

func NewFeedbackReportsClient(cc grpc.ClientConnInterface) FeedbackReportsClient {
	return &feedbackReportsClient{cc}
}

func (c *feedbackReportsClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *feedbackReportsClient) GetAverages(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*AveragesResponse, error) {
	out := new(AveragesResponse)
	if err := c.invoke(ctx, FeedbackReports_GetAverages_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *feedbackReportsClient) GetPeriodComparison(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*PeriodComparisonResponse, error) {
	out := new(PeriodComparisonResponse)
	if err := c.invoke(ctx, FeedbackReports_GetPeriodComparison_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *feedbackReportsClient) GetDailySeries(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*DailySeriesResponse, error) {
	out := new(DailySeriesResponse)
	if err := c.invoke(ctx, FeedbackReports_GetDailySeries_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *feedbackReportsClient) GetCenterStats(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*CenterStatsResponse, error) {
	out := new(CenterStatsResponse)
	if err := c.invoke(ctx, FeedbackReports_GetCenterStats_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// FeedbackReportsServer is the server API for the FeedbackReports service.
// Implementations must embed UnimplementedFeedbackReportsServer.
type FeedbackReportsServer interface {
	GetAverages(context.Context, *ReportRequest) (*AveragesResponse, error)
	GetPeriodComparison(context.Context, *ReportRequest) (*PeriodComparisonResponse, error)
	GetDailySeries(context.Context, *ReportRequest) (*DailySeriesResponse, error)
	GetCenterStats(context.Context, *ReportRequest) (*CenterStatsResponse, error)
	mustEmbedUnimplementedFeedbackReportsServer()
}

type UnimplementedFeedbackReportsServer struct{}

func (UnimplementedFeedbackReportsServer) GetAverages(context.Context, *ReportRequest) (*AveragesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAverages not implemented")
}

func (UnimplementedFeedbackReportsServer) GetPeriodComparison(context.Context, *ReportRequest) (*PeriodComparisonResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPeriodComparison not implemented")
}

func (UnimplementedFeedbackReportsServer) GetDailySeries(context.Context, *ReportRequest) (*DailySeriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDailySeries not implemented")
}

func (UnimplementedFeedbackReportsServer) GetCenterStats(context.Context, *ReportRequest) (*CenterStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCenterStats not implemented")
}

func (UnimplementedFeedbackReportsServer) mustEmbedUnimplementedFeedbackReportsServer() {}

func RegisterFeedbackReportsServer(s grpc.ServiceRegistrar, srv FeedbackReportsServer) {
	s.RegisterService(&FeedbackReports_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Resp any](fullMethod string, call func(FeedbackReportsServer, context.Context, *ReportRequest) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(ReportRequest)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FeedbackReportsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FeedbackReportsServer), ctx, req.(*ReportRequest))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var FeedbackReports_ServiceDesc = grpc.ServiceDesc{
	ServiceName: FeedbackReports_ServiceName,
	HandlerType: (*FeedbackReportsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAverages",
			Handler:    unaryHandler(FeedbackReports_GetAverages_FullMethodName, FeedbackReportsServer.GetAverages),
		},
		{
			MethodName: "GetPeriodComparison",
			Handler:    unaryHandler(FeedbackReports_GetPeriodComparison_FullMethodName, FeedbackReportsServer.GetPeriodComparison),
		},
		{
			MethodName: "GetDailySeries",
			Handler:    unaryHandler(FeedbackReports_GetDailySeries_FullMethodName, FeedbackReportsServer.GetDailySeries),
		},
		{
			MethodName: "GetCenterStats",
			Handler:    unaryHandler(FeedbackReports_GetCenterStats_FullMethodName, FeedbackReportsServer.GetCenterStats),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/reports.go",
}
