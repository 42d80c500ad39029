package grpc

import (
	"context"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const catalogServiceName = "catalog.v1.CatalogService"

// CatalogServiceServer — read-only доступ к каталогу для внутренних сервисов.
// Запросы и ответы передаются как google.protobuf.Struct, см. api/proto/catalog/v1/catalog.proto.
type CatalogServiceServer interface {
	Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Subcategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: catalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: catalogSearchHandler},
		{MethodName: "Subcategories", Handler: catalogSubcategoriesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func catalogSearchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + catalogServiceName + "/Search"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).Search(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func catalogSubcategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).Subcategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + catalogServiceName + "/Subcategories"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).Subcategories(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type CatalogService struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewCatalogService(catalogUC usecase.CatalogUC, logger logger.Logger) *CatalogService {
	return &CatalogService{catalogUC: catalogUC, logger: logger}
}

// Search принимает {"search","category","subcategory"} и возвращает {"products":[...],"total":n}.
func (g *CatalogService) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Search"

	fields := req.AsMap()
	var sr usecase.SearchReq
	var err error
	for name, dst := range map[string]*string{
		"search":      &sr.Search,
		"category":    &sr.Category,
		"subcategory": &sr.Subcategory,
	} {
		if *dst, err = stringField(fields, name); err != nil {
			return nil, GRPCErrorResponse(e.Wrap(op, err))
		}
	}

	res, err := g.catalogUC.Search(ctx, &sr)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	products := make([]any, len(res.Products))
	for i := range res.Products {
		products[i] = toGRPCProduct(&res.Products[i])
	}

	out, err := structpb.NewStruct(map[string]any{
		"products": products,
		"total":    res.Total,
	})
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}
	return out, nil
}

// Subcategories принимает {"category"} и возвращает {"subcategories":[...]}.
func (g *CatalogService) Subcategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Subcategories"

	category, err := stringField(req.AsMap(), "category")
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	subs, err := g.catalogUC.Subcategories(ctx, category)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	list := make([]any, len(subs))
	for i, s := range subs {
		list[i] = s
	}

	out, err := structpb.NewStruct(map[string]any{"subcategories": list})
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}
	return out, nil
}

func toGRPCProduct(p *domain.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"category":    string(p.Category),
		"subcategory": p.Subcategory,
		"description": p.DisplayDescription(),
	}
}
