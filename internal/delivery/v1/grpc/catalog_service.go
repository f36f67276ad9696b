package grpc

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	CatalogServiceName       = "storefront.v1.CatalogService"
	getProductFullMethod     = "/" + CatalogServiceName + "/GetProduct"
	listCategoriesFullMethod = "/" + CatalogServiceName + "/ListCategories"
)

// CatalogServiceServer - серверная часть storefront.v1.CatalogService.
// Сообщения - стандартные well-known типы, поэтому описание сервиса не требует сгенерированного кода.
type CatalogServiceServer interface {
	GetProduct(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ListCategories(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProduct", Handler: getProductHandler},
		{MethodName: "ListCategories", Handler: listCategoriesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/catalog.proto",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func getProductHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetProduct(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProductFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetProduct(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listCategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).ListCategories(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listCategoriesFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).ListCategories(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogServiceClient - клиент storefront.v1.CatalogService для внутренних потребителей.
type CatalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) *CatalogServiceClient {
	return &CatalogServiceClient{cc: cc}
}

func (c *CatalogServiceClient) GetProduct(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getProductFullMethod, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogServiceClient) ListCategories(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listCategoriesFullMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CatalogService отдаёт каталог по gRPC.
type CatalogService struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewCatalogService(catalogUC usecase.CatalogUC, logger logger.Logger) *CatalogService {
	return &CatalogService{catalogUC: catalogUC, logger: logger}
}

func (g *CatalogService) GetProduct(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.GetProduct"

	product, err := g.catalogUC.GetProduct(ctx, req.GetValue())
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := structpb.NewStruct(productToMap(product))
	if err != nil {
		g.logger.Errorf(err, "%s: build response", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

func (g *CatalogService) ListCategories(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	const op = "grpc.ListCategories"

	categories, err := g.catalogUC.ListCategories(ctx)
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	items := make([]any, 0, len(categories))
	for i := range categories {
		items = append(items, categoryToMap(&categories[i]))
	}

	res, err := structpb.NewList(items)
	if err != nil {
		g.logger.Errorf(err, "%s: build response", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

func productToMap(p *domain.ProductWithCategory) map[string]any {
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"description":   optional(p.Description),
		"price":         p.PriceDecimal().StringFixed(2),
		"price_cents":   p.Price,
		"model":         p.Model,
		"image_url":     optional(p.ImageURL),
		"youtube_link":  optional(p.YoutubeLink),
		"stock":         p.Stock,
		"in_stock":      p.InStock(),
		"category_id":   p.CategoryID,
		"category_name": optional(p.CategoryName),
		"created_at":    p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func categoryToMap(c *domain.Category) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": optional(c.Description),
	}
}

// optional превращает отсутствующее значение в null структуры.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
