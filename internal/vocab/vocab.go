// Package vocab holds the vocabulary mapping for the optional JSON-LD
// context pointer. The core stores these as constants and round-trips
// the pointer untouched; it never reasons over the graph vocabulary.
package vocab

// DefaultContext is the vocabulary document a programmatic (JSON)
// review may point at via its top-level "@context" field.
const DefaultContext = "https://opencodereview.org/context/v1"

// Field-to-vocabulary term mapping. One constant per mapped field.
const (
	TermActivities = "items"        // activities ↔ event-stream members
	TermSupersedes = "isRevisionOf" // supersedes ↔ "is a revision of"
	TermAddresses  = "mentions"     // addresses ↔ "mentions"
	TermAuthor     = "creator"      // author ↔ "creator"
	TermCreated    = "created"      // created ↔ "created"
	TermContent    = "text"         // content ↔ "text"
	TermCategory   = "type"         // category ↔ "type"
)

// Terms maps canonical field names to their vocabulary terms.
var Terms = map[string]string{
	"activities": TermActivities,
	"supersedes": TermSupersedes,
	"addresses":  TermAddresses,
	"author":     TermAuthor,
	"created":    TermCreated,
	"content":    TermContent,
	"category":   TermCategory,
}
