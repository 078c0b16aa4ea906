package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/adihub26/kicks-shoe-store/internal/models"
)

// FileStore keeps the serialized order list in one JSON file.
type FileStore struct {
	dataFile string
}

func NewFileStore(dataFile string) *FileStore {
	return &FileStore{dataFile: dataFile}
}

// Load reads the whole collection. A missing file or corrupt payload yields
// an empty collection: the slot is a cache of a simulation, losing it must
// never take the app down.
func (st *FileStore) Load() ([]*models.Order, error) {
	file, err := os.Open(st.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Order{}, nil
		}
		log.Printf("order store: open %s: %v, starting empty", st.dataFile, err)
		return []*models.Order{}, nil
	}
	defer file.Close()

	var orders []*models.Order
	if err := json.NewDecoder(file).Decode(&orders); err != nil {
		log.Printf("order store: corrupt data in %s: %v, starting empty", st.dataFile, err)
		return []*models.Order{}, nil
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// SaveAll overwrites the slot with the given collection. One retry on
// failure, then the error surfaces: silent write loss is unacceptable.
func (st *FileStore) SaveAll(orders []*models.Order) error {
	if err := st.write(orders); err != nil {
		if err = st.write(orders); err != nil {
			return fmt.Errorf("%w: save %s: %v", ErrPersistence, st.dataFile, err)
		}
	}
	return nil
}

func (st *FileStore) write(orders []*models.Order) error {
	file, err := os.Create(st.dataFile)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(orders)
}
