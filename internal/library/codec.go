package library

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

func encodeBook(e *jx.Encoder, b Book) {
	e.ObjStart()
	if b.ISBN != "" {
		e.FieldStart("isbn")
		e.Str(b.ISBN)
	}
	e.FieldStart("title")
	e.Str(b.Title)
	e.FieldStart("author")
	e.Str(b.Author)
	if b.Year != 0 {
		e.FieldStart("year")
		e.Int(b.Year)
	}
	e.ObjEnd()
}

// encodeBooks renders the catalog as a JSON array.
func encodeBooks(books []Book) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.SetIdent(2)
	e.ArrStart()
	for _, b := range books {
		encodeBook(e, b)
	}
	e.ArrEnd()

	out := make([]byte, len(e.Bytes()))
	copy(out, e.Bytes())
	return out
}

func decodeBook(d *jx.Decoder) (Book, error) {
	var b Book
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "isbn":
			b.ISBN, err = d.Str()
		case "title":
			b.Title, err = d.Str()
		case "author":
			b.Author, err = d.Str()
		case "year":
			b.Year, err = d.Int()
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	return b, err
}

// decodeBooks parses a JSON array of books.
func decodeBooks(data []byte) ([]Book, error) {
	var books []Book
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		b, err := decodeBook(d)
		if err != nil {
			return err
		}
		books = append(books, b)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode books")
	}
	if d.Next() != jx.Invalid {
		return nil, errors.New("decode books: unexpected data after array")
	}
	return books, nil
}
