package resolvers

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	inventoryEntity "retail.GO/model/entity/inventory"
	inventoryRepo "retail.GO/model/repository/inventory"

	gqlmodels "retail.GO/graphql/models"
)

// QueryResolver answers the read-only transfer queries. Methods live here
// and in search.go. Mutations go through the REST API; graphql is a
// projection surface only.
type QueryResolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *QueryResolver {
	return &QueryResolver{db: db}
}

func (r *QueryResolver) transferRepo() *inventoryRepo.TransferRepository {
	return inventoryRepo.NewTransferRepository(r.db)
}

// Transfer resolves by id or by number; nil when absent (graphql null).
func (r *QueryResolver) Transfer(ctx context.Context, id *int32, number *string) (*gqlmodels.Transfer, error) {
	repo := r.transferRepo()
	var (
		t   *inventoryEntity.TransferRequest
		err error
	)
	switch {
	case id != nil:
		t, err = repo.FindByID(uint(*id))
	case number != nil:
		t, err = repo.FindByNumber(*number)
	default:
		return nil, errors.New("provide id or number")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entityToTransfer(t)
}

// Transfers lists by status or by location (paginated).
func (r *QueryResolver) Transfers(ctx context.Context, status *string, locationID *int32, pageSize *int32, currentPage *int32) (*gqlmodels.TransferList, error) {
	repo := r.transferRepo()
	ps, cp := pageDefaults(pageSize, currentPage)

	var (
		ts    []inventoryEntity.TransferRequest
		total int64
		err   error
	)
	switch {
	case locationID != nil:
		ts, total, err = repo.FindForLocation(uint(*locationID), cp, ps)
	case status != nil:
		ts, err = repo.FindByStatus(inventoryEntity.TransferStatus(*status))
		total = int64(len(ts))
		ts = pageSlice(ts, cp, ps)
	default:
		return nil, errors.New("provide status or locationId")
	}
	if err != nil {
		return nil, err
	}
	return buildList(ts, total, ps, cp)
}

// OverdueTransfers lists in-transit transfers past their expected delivery.
func (r *QueryResolver) OverdueTransfers(ctx context.Context) ([]*gqlmodels.Transfer, error) {
	ts, err := r.transferRepo().FindOverdue(time.Now())
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Transfer, 0, len(ts))
	for i := range ts {
		m, err := entityToTransfer(&ts[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// StockLedger resolves one ledger row; nil when absent.
func (r *QueryResolver) StockLedger(ctx context.Context, args struct {
	LocationID int32
	ProductID  int32
}) (*gqlmodels.LedgerEntry, error) {
	repo, err := inventoryRepo.NewLedgerRepository(r.db)
	if err != nil {
		return nil, err
	}
	entry, err := repo.GetEntry(uint(args.LocationID), uint(args.ProductID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entityToLedgerEntry(entry)
}

func pageDefaults(pageSize, currentPage *int32) (ps, cp int) {
	ps, cp = 20, 1
	if pageSize != nil && *pageSize > 0 {
		ps = int(*pageSize)
	}
	if currentPage != nil && *currentPage > 0 {
		cp = int(*currentPage)
	}
	return ps, cp
}

func pageSlice(ts []inventoryEntity.TransferRequest, currentPage, pageSize int) []inventoryEntity.TransferRequest {
	start := (currentPage - 1) * pageSize
	if start >= len(ts) {
		return nil
	}
	end := start + pageSize
	if end > len(ts) {
		end = len(ts)
	}
	return ts[start:end]
}

func buildList(ts []inventoryEntity.TransferRequest, total int64, ps, cp int) (*gqlmodels.TransferList, error) {
	items := make([]*gqlmodels.Transfer, 0, len(ts))
	for i := range ts {
		m, err := entityToTransfer(&ts[i])
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	totalPages := (int(total) + ps - 1) / ps
	if totalPages < 1 {
		totalPages = 1
	}
	return &gqlmodels.TransferList{
		Items:      items,
		TotalCount: int32(total),
		PageInfo: &gqlmodels.PageInfo{
			PageSize:    int32(ps),
			CurrentPage: int32(cp),
			TotalPages:  int32(totalPages),
		},
	}, nil
}
