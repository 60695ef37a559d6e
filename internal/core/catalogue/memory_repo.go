package catalogue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used when no database is
// configured and in tests
type MemoryRepository struct {
	mu       sync.RWMutex
	places   []*Place
	gallery  []*GalleryImage
	comments map[int64][]*Comment
	nextID   int64
}

// NewMemoryRepository creates a repository holding places and images
func NewMemoryRepository(places []*Place, gallery []*GalleryImage) *MemoryRepository {
	return &MemoryRepository{
		places:   places,
		gallery:  gallery,
		comments: make(map[int64][]*Comment),
	}
}

// SeedPlaces returns the starter set of Cape Town places
func SeedPlaces() []*Place {
	return []*Place{
		{ID: 1, Name: "Table Mountain", Description: "Iconic flat-topped mountain with sweeping views of Cape Town.", Latitude: -33.9628, Longitude: 18.4098},
		{ID: 2, Name: "V&A Waterfront", Description: "Vibrant harbor with shops, restaurants, and beautiful waterfront views.", Latitude: -33.9036, Longitude: 18.4204},
		{ID: 3, Name: "Cape Point", Description: "Dramatic cliffs and lighthouse at the tip of the Cape Peninsula.", Latitude: -34.3573, Longitude: 18.4977},
		{ID: 4, Name: "Camps Bay Beach", Description: "White sand beach backed by the Twelve Apostles mountain range.", Latitude: -33.9510, Longitude: 18.3772},
		{ID: 5, Name: "Bo-Kaap", Description: "Historic neighborhood known for its colorful houses and Cape Malay culture.", Latitude: -33.9201, Longitude: 18.4141},
	}
}

func (m *MemoryRepository) ListPlaces(_ context.Context) ([]*Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Place, len(m.places))
	copy(out, m.places)
	return out, nil
}

func (m *MemoryRepository) ListGallery(_ context.Context) ([]*GalleryImage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*GalleryImage, len(m.gallery))
	copy(out, m.gallery)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryRepository) GetPlace(_ context.Context, id int64) (*Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.places {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) PlaceExists(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.places {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) GalleryImageExists(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.gallery {
		if g.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) ListComments(_ context.Context, placeID int64) ([]*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.comments[placeID]
	out := make([]*Comment, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (m *MemoryRepository) CreateComment(_ context.Context, comment *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	comment.CreatedAt = time.Now().UTC()
	m.comments[comment.PlaceID] = append(m.comments[comment.PlaceID], comment)
	return nil
}
