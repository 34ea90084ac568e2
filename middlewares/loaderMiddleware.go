package middlewares

import (
	"context"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	sellerLoader          *dataloader.Loader[int, *models.Seller]
	productLoader         *dataloader.Loader[string, *models.Product]
	noteItemLoader        *dataloader.Loader[int, []*models.ConsignmentItem]
	noteInstallmentLoader *dataloader.Loader[int, []*models.ConsignmentInstallment]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	sellerReader := &sellerReader{db: conn}
	productReader := &productReader{db: conn}
	noteItemReader := &noteItemReader{db: conn}
	noteInstallmentReader := &noteInstallmentReader{db: conn}

	return &Loaders{
		sellerLoader:          dataloader.NewBatchedLoader(sellerReader.getSellers, dataloader.WithWait[int, *models.Seller](time.Millisecond)),
		productLoader:         dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[string, *models.Product](time.Millisecond)),
		noteItemLoader:        dataloader.NewBatchedLoader(noteItemReader.getNoteItems, dataloader.WithWait[int, []*models.ConsignmentItem](time.Millisecond)),
		noteInstallmentLoader: dataloader.NewBatchedLoader(noteInstallmentReader.getNoteInstallments, dataloader.WithWait[int, []*models.ConsignmentInstallment](time.Millisecond)),
	}
}

func LoaderMiddleware(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := conn
		if db == nil {
			db = config.GetDB()
		}
		loader := NewLoaders(db)
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// For returns the dataloader for a given context
func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results
// (T must be a struct)
func generateLoaderResults[T models.Data](results []T, ids []int) []*dataloader.Result[*T] {
	resultMap := make(map[int]T)
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data := resultMap[id]
		if reflect.ValueOf(data).IsZero() {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}

// T must be struct
// each id has many related results
func generateLoaderArrayResults[T models.RelatedData](results []T, referenceIds []int) (loaderResults []*dataloader.Result[[]*T]) {
	resultMap := make(map[int][]*T)
	for _, result := range results {
		// creating a new variable every turn, to avoid pointing to the adddress of result
		copy := result
		resultMap[result.GetReferenceId()] = append(resultMap[result.GetReferenceId()], &copy)
	}
	for _, id := range referenceIds {
		resultArray := resultMap[id]
		loaderResults = append(loaderResults, &dataloader.Result[[]*T]{Data: resultArray})
	}
	return loaderResults
}
