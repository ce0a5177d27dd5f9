package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/bonsplitser/internal/middleware"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService service.
const ReceiptServiceName = "bonsplitser.v1.ReceiptService"

// Procedure paths of the ReceiptService RPCs.
const (
	ProcessReceiptProcedure  = "/" + ReceiptServiceName + "/ProcessReceipt"
	GetReceiptProcedure      = "/" + ReceiptServiceName + "/GetReceipt"
	CorrectReceiptProcedure  = "/" + ReceiptServiceName + "/CorrectReceipt"
	SettleProcedure          = "/" + ReceiptServiceName + "/Settle"
	ListSettlementsProcedure = "/" + ReceiptServiceName + "/ListSettlements"
)

// NewReceiptServiceHandler builds an HTTP handler for the service and returns
// the path it should be mounted on. Every procedure except ProcessReceipt
// requires a receipt access token.
func NewReceiptServiceHandler(svc *ReceiptService, opts ...connect.HandlerOption) (string, http.Handler) {
	// Documents travel base64 encoded.
	readMax := svc.maxUploadBytes/3*4 + 64<<10

	public := append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithReadMaxBytes(readMax),
	}, opts...)
	protected := append(append([]connect.HandlerOption{}, public...),
		connect.WithInterceptors(middleware.RequireAuth(svc.jwt)))

	mux := http.NewServeMux()
	mux.Handle(ProcessReceiptProcedure, connect.NewUnaryHandler(ProcessReceiptProcedure, svc.ProcessReceipt, public...))
	mux.Handle(GetReceiptProcedure, connect.NewUnaryHandler(GetReceiptProcedure, svc.GetReceipt, protected...))
	mux.Handle(CorrectReceiptProcedure, connect.NewUnaryHandler(CorrectReceiptProcedure, svc.CorrectReceipt, protected...))
	mux.Handle(SettleProcedure, connect.NewUnaryHandler(SettleProcedure, svc.Settle, protected...))
	mux.Handle(ListSettlementsProcedure, connect.NewUnaryHandler(ListSettlementsProcedure, svc.ListSettlements, protected...))
	return "/" + ReceiptServiceName + "/", mux
}

// ReceiptServiceClient is a client for the ReceiptService.
type ReceiptServiceClient struct {
	processReceipt  *connect.Client[ProcessReceiptRequest, ProcessReceiptResponse]
	getReceipt      *connect.Client[GetReceiptRequest, GetReceiptResponse]
	correctReceipt  *connect.Client[CorrectReceiptRequest, CorrectReceiptResponse]
	settle          *connect.Client[SettleRequest, SettleResponse]
	listSettlements *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
}

// NewReceiptServiceClient constructs a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &ReceiptServiceClient{
		processReceipt:  connect.NewClient[ProcessReceiptRequest, ProcessReceiptResponse](httpClient, baseURL+ProcessReceiptProcedure, opts...),
		getReceipt:      connect.NewClient[GetReceiptRequest, GetReceiptResponse](httpClient, baseURL+GetReceiptProcedure, opts...),
		correctReceipt:  connect.NewClient[CorrectReceiptRequest, CorrectReceiptResponse](httpClient, baseURL+CorrectReceiptProcedure, opts...),
		settle:          connect.NewClient[SettleRequest, SettleResponse](httpClient, baseURL+SettleProcedure, opts...),
		listSettlements: connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+ListSettlementsProcedure, opts...),
	}
}

func (c *ReceiptServiceClient) ProcessReceipt(ctx context.Context, req *connect.Request[ProcessReceiptRequest]) (*connect.Response[ProcessReceiptResponse], error) {
	return c.processReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) CorrectReceipt(ctx context.Context, req *connect.Request[CorrectReceiptRequest]) (*connect.Response[CorrectReceiptResponse], error) {
	return c.correctReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) Settle(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
