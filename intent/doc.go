// Package intent defines the FAQ intent catalog consumed by the matcher.
//
// An [Intent] is a named topic the assistant can recognize: a stable ID, a
// short title, example utterances, keyword tags, and an opaque answer payload
// (answer text and display links). A [Catalog] is an ordered, immutable
// collection of intents with unique IDs.
//
// # Usage
//
// Build a catalog directly:
//
//	cat, err := intent.NewCatalog([]intent.Intent{
//	    {
//	        ID:         "resume",
//	        Title:      "Resume",
//	        Utterances: []string{"resume", "cv", "download resume"},
//	        Tags:       []string{"resume", "cv", "pdf"},
//	        Answer:     "You can download my resume as a PDF.",
//	    },
//	})
//
// Or load a catalog file (YAML or JSON):
//
//	src, err := intent.LoadFile("faq.yaml")
//	cat, err := src.Catalog()
//
// [DefaultSource] returns the catalog embedded in the binary.
//
// # Catalog Order
//
// Catalog order is significant: the matcher breaks score ties in favour of
// the earlier intent. [Catalog.Intents] returns the catalog's own slice so
// that match results can reference intents without copying; callers must
// treat it as read-only.
//
// # Detail Levels
//
// [Describe] renders an intent at a chosen [DetailLevel]:
//
//   - DetailSummary: ID and title
//   - DetailUtterances: adds utterances and tags
//   - DetailFull: adds the answer and links
//
// # Error Handling
//
// The package defines these error values:
//   - ErrNotFound: intent ID not present in the catalog
//   - ErrInvalidIntent: intent failed validation (for example, an empty ID)
//   - ErrDuplicateID: two intents share an ID
//   - ErrInvalidDetail: unknown DetailLevel
//   - ErrUnsupportedFormat: catalog file extension not recognized
//
// Use errors.Is() to check error types.
package intent
