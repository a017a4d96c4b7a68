package decode

import "fmt"

// TaggedContent is the result of a mandatory-tag scan: the designated
// field's value plus everything else, buffered.
type TaggedContent struct {
	Tag     Content
	Content Content
}

// OptionallyTaggedContent is the result of an optional-tag scan. Tag is
// nil when the field was not present.
type OptionallyTaggedContent struct {
	Tag     *Content
	Content Content
}

// ScanTagged splits a buffered payload into the field named name and the
// remaining content. In the keyed-map form the tag may sit anywhere among
// its siblings; in the positional form it is the first element. A missing
// or duplicated tag is an error.
func ScanTagged(c Content, name string) (TaggedContent, error) {
	switch c.kind {
	case KindSeq:
		if len(c.seq) == 0 {
			return TaggedContent{}, &MissingFieldError{Field: name}
		}
		return TaggedContent{
			Tag:     c.seq[0],
			Content: Seq(c.seq[1:]),
		}, nil
	case KindMap:
		var tag *Content
		rest := make([]Pair, 0, Cautious(len(c.pairs)))
		for _, p := range c.pairs {
			if keyMatches(p.Key, name) {
				if tag != nil {
					return TaggedContent{}, &DuplicateFieldError{Field: name}
				}
				v := p.Value
				tag = &v
				continue
			}
			rest = append(rest, p)
		}
		if tag == nil {
			return TaggedContent{}, &MissingFieldError{Field: name}
		}
		return TaggedContent{Tag: *tag, Content: MapOf(rest)}, nil
	}
	return TaggedContent{}, fmt.Errorf("decode: tagged payload must be a map or sequence, got kind %d", c.kind)
}

// ScanOptionallyTagged is ScanTagged for payloads where the tag's mere
// presence disambiguates the shape: an absent tag is not an error, the
// scan succeeds with a nil tag and the full content.
func ScanOptionallyTagged(c Content, name string) (OptionallyTaggedContent, error) {
	switch c.kind {
	case KindSeq:
		if len(c.seq) == 0 {
			return OptionallyTaggedContent{}, &MissingFieldError{Field: name}
		}
		tag := c.seq[0]
		return OptionallyTaggedContent{
			Tag:     &tag,
			Content: Seq(c.seq[1:]),
		}, nil
	case KindMap:
		var tag *Content
		rest := make([]Pair, 0, Cautious(len(c.pairs)))
		for _, p := range c.pairs {
			if keyMatches(p.Key, name) {
				if tag != nil {
					return OptionallyTaggedContent{}, &DuplicateFieldError{Field: name}
				}
				v := p.Value
				tag = &v
				continue
			}
			rest = append(rest, p)
		}
		return OptionallyTaggedContent{Tag: tag, Content: MapOf(rest)}, nil
	}
	return OptionallyTaggedContent{}, fmt.Errorf("decode: tagged payload must be a map or sequence, got kind %d", c.kind)
}

// keyMatches compares a buffered key against the tag name by its textual
// or byte form.
func keyMatches(key Content, name string) bool {
	s, ok := key.AsString()
	return ok && s == name
}
