package types

// ArrayType is a collection type; generators such as explode produce one
// output row per element.
type ArrayType struct {
	Element DataType
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem DataType) *ArrayType {
	return &ArrayType{Element: elem}
}

func (t *ArrayType) Name() string {
	return t.Element.Name() + "[]"
}

func (t *ArrayType) Size() int {
	return -1
}

// ElementType returns the element type of an array type, or Unknown for
// any other type.
func ElementType(t DataType) DataType {
	if arr, ok := t.(*ArrayType); ok {
		return arr.Element
	}
	return Unknown
}
