package imap

import "strings"

// BodyFields are the fields common to every body structure part:
// body-fld-param, body-fld-id, body-fld-desc, body-fld-enc, body-fld-octets.
type BodyFields struct {
	// Params preserves the insertion order of body-fld-param pairs.
	Params   []BodyParam
	ID       *string
	Desc     *string
	Encoding string
	Octets   uint32
}

// Param returns the value of the named parameter (case-insensitive), or ""
// if absent.
func (f BodyFields) Param(name string) string {
	for _, p := range f.Params {
		if strings.EqualFold(p.Key, name) {
			return p.Value
		}
	}
	return ""
}

// BodyParam is a single body-fld-param key/value pair.
type BodyParam struct {
	Key, Value string
}

// BodyExtension1Part holds body-ext-1part data: body-fld-md5 plus the
// optional disposition/language/location tail.
type BodyExtension1Part struct {
	MD5         *string
	Disposition *BodyDisposition
	Language    []string
	Location    *string
}

// BodyExtensionMPart holds body-ext-mpart data: body-fld-param plus the
// optional disposition/language/location tail.
type BodyExtensionMPart struct {
	Params      []BodyParam
	Disposition *BodyDisposition
	Language    []string
	Location    *string
}

// BodyDisposition is the body-fld-dsp value: a disposition type plus its
// parameters (e.g. "attachment"; filename=...).
type BodyDisposition struct {
	Value  string
	Params []BodyParam
}

func (d BodyDisposition) param(name string) string {
	for _, p := range d.Params {
		if strings.EqualFold(p.Key, name) {
			return p.Value
		}
	}
	return ""
}

// Filename returns the disposition filename parameter, falling back to the
// (discouraged) Content-Type "name" parameter.
func (d *BodyDisposition) Filename(fields BodyFields) string {
	if d != nil {
		if name := d.param("filename"); name != "" {
			return name
		}
	}
	return fields.Param("name")
}

// BodyStructure is the recursive sum type produced by FETCH BODY/
// BODYSTRUCTURE. It is exactly one of *BodyBasic, *BodyText, *BodyMessage,
// or *BodyMultipart.
type BodyStructure interface {
	// MediaType returns the lowercase "type/subtype" of this part.
	MediaType() string
	// Walk visits bs and every descendant in DFS pre-order, stopping a
	// subtree early if f returns false. The body nested inside a
	// *BodyMessage is not visited.
	Walk(f BodyWalkFunc)

	bodyStructure()
}

// BodyWalkFunc is called for each part visited by BodyStructure.Walk. path
// is the IMAP part-path (1-based) addressing part. Returning false skips
// part's children.
type BodyWalkFunc func(path []int, part BodyStructure) (walkChildren bool)

var (
	_ BodyStructure = (*BodyBasic)(nil)
	_ BodyStructure = (*BodyText)(nil)
	_ BodyStructure = (*BodyMessage)(nil)
	_ BodyStructure = (*BodyMultipart)(nil)
)

// BodyBasic is body-type-basic: any part that is neither "text/*" nor
// "message/rfc822".
type BodyBasic struct {
	Type, Subtype string
	Fields        BodyFields
	Extension     *BodyExtension1Part
}

func (b *BodyBasic) MediaType() string { return mediaType(b.Type, b.Subtype) }
func (b *BodyBasic) Walk(f BodyWalkFunc) { f([]int{1}, b) }
func (*BodyBasic) bodyStructure()      {}

// BodyText is body-type-text: a "text/*" leaf part, which additionally
// reports its line count.
type BodyText struct {
	Subtype   string
	Fields    BodyFields
	Lines     uint32
	Extension *BodyExtension1Part
}

func (b *BodyText) MediaType() string   { return mediaType("text", b.Subtype) }
func (b *BodyText) Walk(f BodyWalkFunc) { f([]int{1}, b) }
func (*BodyText) bodyStructure()        {}

// BodyMessage is body-type-msg: a "message/rfc822" (or "message/global")
// part, which nests a full envelope and body structure. The subtype is not
// recorded: MediaType reports "message/rfc822" for both.
type BodyMessage struct {
	Fields    BodyFields
	Envelope  *Envelope
	Body      BodyStructure
	Lines     uint32
	Extension *BodyExtension1Part
}

func (b *BodyMessage) MediaType() string { return "message/rfc822" }
func (b *BodyMessage) Walk(f BodyWalkFunc) { f([]int{1}, b) }
func (*BodyMessage) bodyStructure()        {}

// BodyMultipart is body-type-mpart: a container part with one or more
// children, addressed by appending their 1-based index to the parent path.
type BodyMultipart struct {
	Children  []BodyStructure
	Subtype   string
	Extension *BodyExtensionMPart
}

func (b *BodyMultipart) MediaType() string { return mediaType("multipart", b.Subtype) }

func (b *BodyMultipart) Walk(f BodyWalkFunc) {
	b.walk(f, nil)
}

func (b *BodyMultipart) walk(f BodyWalkFunc, path []int) {
	if !f(path, b) {
		return
	}
	for i, child := range b.Children {
		childPath := append(append([]int(nil), path...), i+1)
		switch child := child.(type) {
		case *BodyMultipart:
			child.walk(f, childPath)
		default:
			f(childPath, child)
		}
	}
}

func (*BodyMultipart) bodyStructure() {}

func mediaType(typ, subtype string) string {
	return strings.ToLower(typ) + "/" + strings.ToLower(subtype)
}
