package graphqlserver

import (
	"context"
	"encoding/json"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"retail.GO/graphql"
	gqlmodels "retail.GO/graphql/models"
	"retail.GO/graphql/registry"
	"retail.GO/graphql/resolvers"
)

// RootResolver is the root for graphql-go.
type RootResolver struct {
	DB *gorm.DB
}

// Query returns the query resolver.
func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{db: r.DB}
}

// QueryResolver implements Query fields. Delegates to resolvers package.
type QueryResolver struct {
	db *gorm.DB
}

// TransferArgs matches the transfer query arguments.
type TransferArgs struct {
	ID     *int32
	Number *string
}

func (r *QueryResolver) Transfer(ctx context.Context, args TransferArgs) (*gqlmodels.Transfer, error) {
	return resolvers.NewResolver(r.db).Transfer(ctx, args.ID, args.Number)
}

// TransfersArgs matches the transfers query arguments (defaults pageSize=20, currentPage=1).
type TransfersArgs struct {
	Status      *string
	LocationID  *int32
	PageSize    *int32
	CurrentPage *int32
}

func (r *QueryResolver) Transfers(ctx context.Context, args TransfersArgs) (*gqlmodels.TransferList, error) {
	return resolvers.NewResolver(r.db).Transfers(ctx, args.Status, args.LocationID, args.PageSize, args.CurrentPage)
}

func (r *QueryResolver) OverdueTransfers(ctx context.Context) ([]*gqlmodels.Transfer, error) {
	return resolvers.NewResolver(r.db).OverdueTransfers(ctx)
}

func (r *QueryResolver) TransferSearch(ctx context.Context, args struct {
	Query       string
	PageSize    *int32
	CurrentPage *int32
}) (*gqlmodels.TransferList, error) {
	return resolvers.NewResolver(r.db).TransferSearch(ctx, args)
}

func (r *QueryResolver) StockLedger(ctx context.Context, args struct {
	LocationID int32
	ProductID  int32
}) (*gqlmodels.LedgerEntry, error) {
	return resolvers.NewResolver(r.db).StockLedger(ctx, args)
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
