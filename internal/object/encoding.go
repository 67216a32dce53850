package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"vcs/internal/content"
)

// Encode returns the canonical bytes of c: sorted keys, ", " and ": "
// separators, ASCII-only strings. Commit hashes depend on every byte.
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer

	buf.WriteString(`{"author": `)
	writeString(&buf, c.Author)
	if c.MergeParent != "" {
		buf.WriteString(`, "merge_parent": `)
		writeString(&buf, c.MergeParent)
	}
	buf.WriteString(`, "message": `)
	writeString(&buf, c.Message)
	buf.WriteString(`, "parent": `)
	if c.Parent == "" {
		buf.WriteString("null")
	} else {
		writeString(&buf, c.Parent)
	}
	buf.WriteString(`, "timestamp": `)
	writeString(&buf, c.Timestamp)
	buf.WriteString(`, "tree": `)
	writeTree(&buf, c.Tree)
	buf.WriteByte('}')

	return buf.Bytes()
}

// ComputeHash encodes c and returns the digest, also setting c.Hash.
func (c *Commit) ComputeHash() string {
	c.Hash = content.Hash(c.Encode())
	return c.Hash
}

func writeTree(buf *bytes.Buffer, tree Tree) {
	if len(tree) == 0 {
		buf.WriteString("{}")
		return
	}

	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	// byte order of UTF-8 equals code point order
	sort.Strings(paths)

	buf.WriteByte('{')
	for i, p := range paths {
		if i > 0 {
			buf.WriteString(", ")
		}
		e := tree[p]
		writeString(buf, p)
		buf.WriteString(`: {"hash": `)
		writeString(buf, e.Hash)
		buf.WriteString(`, "mode": `)
		writeString(buf, e.Mode)
		buf.WriteString(`, "staged_at": `)
		writeString(buf, e.StagedAt)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
}

const hexDigits = "0123456789abcdef"

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteByte(byte(r))
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeUnicodeEscape(buf, hi)
				writeUnicodeEscape(buf, lo)
			default:
				writeUnicodeEscape(buf, r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xf])
	buf.WriteByte(hexDigits[(r>>8)&0xf])
	buf.WriteByte(hexDigits[(r>>4)&0xf])
	buf.WriteByte(hexDigits[r&0xf])
}

type wireCommit struct {
	Message     string  `json:"message"`
	Author      string  `json:"author"`
	Timestamp   string  `json:"timestamp"`
	Parent      *string `json:"parent"`
	MergeParent *string `json:"merge_parent"`
	Tree        Tree    `json:"tree"`
}

// Decode parses a stored commit object. hash is recorded as-is.
func Decode(hash string, data []byte) (*Commit, error) {
	var w wireCommit
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding commit %s: %w", hash, err)
	}
	if w.Tree == nil {
		w.Tree = Tree{}
	}

	c := &Commit{
		Hash:      hash,
		Message:   w.Message,
		Author:    w.Author,
		Timestamp: w.Timestamp,
		Tree:      w.Tree,
	}
	if w.Parent != nil {
		c.Parent = *w.Parent
	}
	if w.MergeParent != nil {
		c.MergeParent = *w.MergeParent
	}
	return c, nil
}
