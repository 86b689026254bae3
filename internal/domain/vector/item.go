package vector

import (
	"strconv"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// DefaultNamespace is used when a request leaves namespace empty.
const DefaultNamespace = "default"

// Item is one validated upsert entry.
type Item struct {
	id        string
	namespace string
	source    Source
	metadata  map[string]string
}

// NewItem builds an item from an already validated source.
func NewItem(id, namespace string, source Source, metadata map[string]string) Item {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Item{id: id, namespace: namespace, source: source, metadata: metadata}
}

// ID returns the caller-supplied id, empty when it must be derived.
func (i *Item) ID() string { return i.id }

// Namespace returns the item namespace.
func (i *Item) Namespace() string { return i.namespace }

// Source returns the text or vector payload.
func (i *Item) Source() Source { return i.source }

// Metadata returns the string metadata, possibly nil.
func (i *Item) Metadata() map[string]string { return i.metadata }

// Batch is a validated, single-namespace upsert batch.
type Batch struct {
	namespace string
	items     []Item
}

// NewBatch checks that every item shares the first item's namespace and that
// the batch fits within maxSize (0 disables the limit). An empty batch is valid.
func NewBatch(items []Item, maxSize int) (Batch, error) {
	if len(items) == 0 {
		return Batch{}, nil
	}
	if maxSize > 0 && len(items) > maxSize {
		return Batch{}, domain.NewValidationError("vectors",
			"batch of "+strconv.Itoa(len(items))+" exceeds limit of "+strconv.Itoa(maxSize))
	}

	ns := items[0].namespace
	for idx := 1; idx < len(items); idx++ {
		if items[idx].namespace != ns {
			return Batch{}, &domain.NamespaceMismatchError{
				Index:    idx,
				Expected: ns,
				Got:      items[idx].namespace,
			}
		}
	}
	return Batch{namespace: ns, items: items}, nil
}

// Namespace returns the common namespace, empty for an empty batch.
func (b *Batch) Namespace() string { return b.namespace }

// Items returns the items in input order.
func (b *Batch) Items() []Item { return b.items }

// Len returns the number of items.
func (b *Batch) Len() int { return len(b.items) }

// Texts returns the positions and texts of every text-sourced item, in order.
func (b *Batch) Texts() (positions []int, texts []string) {
	for i := range b.items {
		if t, ok := b.items[i].source.Text(); ok {
			positions = append(positions, i)
			texts = append(texts, t)
		}
	}
	return positions, texts
}
