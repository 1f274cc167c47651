package facecode

// Field names of the V1 layout.
const (
	FieldHair     = "hair_index"
	FieldBeard    = "beard_index"
	FieldAge      = "age"
	FieldSkinTone = "skin_tone"
	FieldReserved = "reserved"
)

// MorphCount is the number of morph sliders in V1.
const MorphCount = 8

// MorphFields lists the V1 morph field names in bit order.
var MorphFields = [MorphCount]string{
	"morph_0", "morph_1", "morph_2", "morph_3",
	"morph_4", "morph_5", "morph_6", "morph_7",
}

// V1 is the canonical Warband layout: eight 3-bit morphs in bits 0-23, four
// 6-bit indices in bits 24-47 and 16 reserved bits that round-trip untouched.
// Every default is the field minimum, so the default face is code zero.
var V1 = MustLayout("v1",
	FieldSpec{Name: MorphFields[0], Offset: 0, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[1], Offset: 3, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[2], Offset: 6, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[3], Offset: 9, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[4], Offset: 12, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[5], Offset: 15, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[6], Offset: 18, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: MorphFields[7], Offset: 21, Width: 3, Min: 0, Max: 7},
	FieldSpec{Name: FieldHair, Offset: 24, Width: 6, Min: 0, Max: 63},
	FieldSpec{Name: FieldBeard, Offset: 30, Width: 6, Min: 0, Max: 63},
	FieldSpec{Name: FieldAge, Offset: 36, Width: 6, Min: 0, Max: 63},
	FieldSpec{Name: FieldSkinTone, Offset: 42, Width: 6, Min: 0, Max: 63},
	FieldSpec{Name: FieldReserved, Offset: 48, Width: 16, Min: 0, Max: 65535},
)
