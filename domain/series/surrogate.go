package series

// SurrogateSet holds num_surr independently generated replicates of one
// observed series. Each column is a replicate with the same length as the
// input. Sets are built fresh per test invocation and never cached.
type SurrogateSet struct {
	Rows    int
	Columns [][]float64
}

// NewSurrogateSet allocates a rows x cols set with zeroed columns
func NewSurrogateSet(rows, cols int) *SurrogateSet {
	columns := make([][]float64, cols)
	for j := range columns {
		columns[j] = make([]float64, rows)
	}
	return &SurrogateSet{Rows: rows, Columns: columns}
}

// NumColumns returns the number of replicates in the set
func (s *SurrogateSet) NumColumns() int {
	return len(s.Columns)
}

// Column returns the j-th replicate. The slice is owned by the set;
// callers that mutate it should Clone first.
func (s *SurrogateSet) Column(j int) []float64 {
	return s.Columns[j]
}
