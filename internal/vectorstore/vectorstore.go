// Package vectorstore provides a narrow k-nearest-neighbor index over
// embedding vectors. Distances are cosine distances (1 - cosine similarity),
// so lower means more similar.
package vectorstore

// Match is one query result: the payload stored at insert time together
// with the cosine distance to the query vector.
type Match struct {
	ID       string
	Payload  any
	Distance float64
}

// Index is the similarity-search contract the triage services depend on.
// Any compliant backend (brute force, approximate) can stand behind it.
type Index interface {
	Insert(id string, vector []float32, payload any)
	QueryKNearest(vector []float32, k int) []Match
	Len() int
}
