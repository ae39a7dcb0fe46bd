package model

// CommentSet holds the three comment styles produced by one generation
// call.
type CommentSet struct {
	Informative string
	Emotional   string
	Question    string
}

// Draft pairs a reviewable set in the operator's display language with
// a pasteable set in the video's own language. When the video already
// is in the display language both sets are the same generation result.
type Draft struct {
	Display  CommentSet
	Copy     CommentSet
	Language string
}
