package password

import "regexp"

var referencePattern = regexp.MustCompile(`^#(\w+)#(.*)$`)

// Reference is a stored credential split into its scheme tag and native hash.
type Reference struct {
	Scheme SchemeTag
	Native string
}

// ParseReference splits "#<scheme>#<native>". The scheme tag is not checked
// against the registry here.
func ParseReference(s string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, ErrMalformedReference
	}

	return Reference{Scheme: SchemeTag(m[1]), Native: m[2]}, nil
}

func (r Reference) String() string {
	return "#" + string(r.Scheme) + "#" + r.Native
}
