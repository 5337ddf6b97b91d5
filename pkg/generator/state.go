package generator

// Batch holds the choice history shared by the matched documents of one batch.
// Documents of a batch must be generated one after another.
type Batch struct {
	// Number is this batch's 1-based position in the run.
	Number int
	// Batches is the number of batches in the run.
	Batches int
	// PerBatch is the number of matched documents in each batch.
	PerBatch int

	matchSame      map[string]int
	matchDifferent map[string][]int
	onlyOneEver    map[string]map[int][]int
	maxSelections  map[string]map[int]int
}

// NewBatch creates empty batch-scoped history.
func NewBatch(number, batches, perBatch int) (b *Batch) {
	b = &Batch{
		Number:         number,
		Batches:        batches,
		PerBatch:       perBatch,
		matchSame:      make(map[string]int),
		matchDifferent: make(map[string][]int),
		onlyOneEver:    make(map[string]map[int][]int),
		maxSelections:  make(map[string]map[int]int),
	}
	return b
}

// Selections returns how many times each subpoint of label was chosen in this batch.
func (b *Batch) Selections(label string) (counts map[int]int) {
	counts = make(map[int]int, len(b.maxSelections[label]))
	for k, v := range b.maxSelections[label] {
		counts[k] = v
	}
	return counts
}

// Document identifies one output document inside a batch.
type Document struct {
	// Name is the identifier written at the start of the choice trace and CSV row.
	Name string
	// Index is the 1-based position of the document within its batch.
	Index int
}

// rangeTracker counts iterations for sections with minimum/maximum entries.
type rangeTracker struct {
	total    int
	done     int
	differed int
}

// docState is the per-document interpreter state.
type docState struct {
	doc   Document
	batch *Batch

	lastChoice  map[string]int
	repeatSame  map[string]int
	repeatNever map[string][]int
	ranges      map[string]*rangeTracker
	memory      map[string]string
	deferred    *deferredQueue
	decisions   []Decision
}

func newDocState(batch *Batch, doc Document) (s *docState) {
	s = &docState{
		doc:         doc,
		batch:       batch,
		lastChoice:  make(map[string]int),
		repeatSame:  make(map[string]int),
		repeatNever: make(map[string][]int),
		ranges:      make(map[string]*rangeTracker),
		memory:      make(map[string]string),
		deferred:    &deferredQueue{},
	}
	return s
}

func contains(list []int, v int) (found bool) {
	for _, x := range list {
		if x == v {
			found = true
			return found
		}
	}
	return found
}

// without returns the elements of list not present in drop, keeping order.
func without(list, drop []int) (kept []int) {
	kept = make([]int, 0, len(list))
	for _, x := range list {
		if !contains(drop, x) {
			kept = append(kept, x)
		}
	}
	return kept
}
