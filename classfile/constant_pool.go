package classfile

import (
	"fmt"
	"iter"
	"math"

	"github.com/dhamidi/jclass/mutf8"
)

// Constant is one constant pool entry. Implementations are comparable value
// types, so two entries with the same contents are equal with ==.
type Constant interface {
	Tag() ConstantTag
	constant()
}

type ConstantUtf8Info struct {
	Value string
}

type ConstantIntegerInfo struct {
	Value int32
}

// ConstantFloatInfo keeps the raw IEEE 754 bits so NaN payloads survive a
// round trip.
type ConstantFloatInfo struct {
	Bits uint32
}

func (c ConstantFloatInfo) Float() float32 { return math.Float32frombits(c.Bits) }

type ConstantLongInfo struct {
	Value int64
}

type ConstantDoubleInfo struct {
	Bits uint64
}

func (c ConstantDoubleInfo) Float() float64 { return math.Float64frombits(c.Bits) }

type ConstantClassInfo struct {
	NameIndex uint16
}

type ConstantStringInfo struct {
	StringIndex uint16
}

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

type ConstantModuleInfo struct {
	NameIndex uint16
}

type ConstantPackageInfo struct {
	NameIndex uint16
}

// placeholder fills the unusable slot after a Long or Double.
type placeholder struct{}

func (ConstantUtf8Info) Tag() ConstantTag               { return ConstantUtf8 }
func (ConstantIntegerInfo) Tag() ConstantTag            { return ConstantInteger }
func (ConstantFloatInfo) Tag() ConstantTag              { return ConstantFloat }
func (ConstantLongInfo) Tag() ConstantTag               { return ConstantLong }
func (ConstantDoubleInfo) Tag() ConstantTag             { return ConstantDouble }
func (ConstantClassInfo) Tag() ConstantTag              { return ConstantClass }
func (ConstantStringInfo) Tag() ConstantTag             { return ConstantString }
func (ConstantFieldrefInfo) Tag() ConstantTag           { return ConstantFieldref }
func (ConstantMethodrefInfo) Tag() ConstantTag          { return ConstantMethodref }
func (ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }
func (ConstantNameAndTypeInfo) Tag() ConstantTag        { return ConstantNameAndType }
func (ConstantMethodHandleInfo) Tag() ConstantTag       { return ConstantMethodHandle }
func (ConstantMethodTypeInfo) Tag() ConstantTag         { return ConstantMethodType }
func (ConstantDynamicInfo) Tag() ConstantTag            { return ConstantDynamic }
func (ConstantInvokeDynamicInfo) Tag() ConstantTag      { return ConstantInvokeDynamic }
func (ConstantModuleInfo) Tag() ConstantTag             { return ConstantModule }
func (ConstantPackageInfo) Tag() ConstantTag            { return ConstantPackage }
func (placeholder) Tag() ConstantTag                    { return 0 }

func (ConstantUtf8Info) constant()               {}
func (ConstantIntegerInfo) constant()            {}
func (ConstantFloatInfo) constant()              {}
func (ConstantLongInfo) constant()               {}
func (ConstantDoubleInfo) constant()             {}
func (ConstantClassInfo) constant()              {}
func (ConstantStringInfo) constant()             {}
func (ConstantFieldrefInfo) constant()           {}
func (ConstantMethodrefInfo) constant()          {}
func (ConstantInterfaceMethodrefInfo) constant() {}
func (ConstantNameAndTypeInfo) constant()        {}
func (ConstantMethodHandleInfo) constant()       {}
func (ConstantMethodTypeInfo) constant()         {}
func (ConstantDynamicInfo) constant()            {}
func (ConstantInvokeDynamicInfo) constant()      {}
func (ConstantModuleInfo) constant()             {}
func (ConstantPackageInfo) constant()            {}
func (placeholder) constant()                    {}

// width is the number of slots c occupies.
func width(c Constant) int {
	switch c.(type) {
	case ConstantLongInfo, ConstantDoubleInfo:
		return 2
	}
	return 1
}

// ConstantPool holds the entries of a class file's constant pool together
// with a reverse index from entry to slot. Slot 0 is never valid and the slot
// after a Long or Double is a placeholder.
//
// The zero value is not usable; create pools with NewConstantPool.
type ConstantPool struct {
	entries []Constant
	index   map[Constant]uint16
}

func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		entries: make([]Constant, 1),
		index:   make(map[Constant]uint16),
	}
}

// Len returns constant_pool_count: one more than the highest valid index.
func (cp *ConstantPool) Len() int { return len(cp.entries) }

// All yields every entry in index order, skipping placeholder slots.
func (cp *ConstantPool) All() iter.Seq2[uint16, Constant] {
	return func(yield func(uint16, Constant) bool) {
		for i := 1; i < len(cp.entries); i++ {
			c := cp.entries[i]
			if _, ok := c.(placeholder); ok {
				continue
			}
			if !yield(uint16(i), c) {
				return
			}
		}
	}
}

// Get returns the entry at index i.
func (cp *ConstantPool) Get(i uint16) (Constant, error) {
	if i < 1 || int(i) >= len(cp.entries) {
		return nil, &IndexError{Index: i, Err: ErrConstantPoolIndex}
	}
	c := cp.entries[i]
	if _, ok := c.(placeholder); ok {
		return nil, &IndexError{Index: i, Placeholder: true, Err: ErrConstantPoolIndex}
	}
	return c, nil
}

// Entry returns the entry at index i and checks that it has the given tag.
func (cp *ConstantPool) Entry(i uint16, tag ConstantTag) (Constant, error) {
	c, err := cp.Get(i)
	if err != nil {
		if ierr, ok := err.(*IndexError); ok {
			ierr.Want = tag
		}
		return nil, err
	}
	if c.Tag() != tag {
		return nil, &IndexError{Index: i, Want: tag, Got: c.Tag(), Err: ErrConstantPoolType}
	}
	return c, nil
}

func lookup[T Constant](cp *ConstantPool, i uint16) (T, error) {
	var zero T
	c, err := cp.Entry(i, zero.Tag())
	if err != nil {
		return zero, err
	}
	return c.(T), nil
}

func (cp *ConstantPool) Utf8(i uint16) (string, error) {
	c, err := lookup[ConstantUtf8Info](cp, i)
	return c.Value, err
}

// ClassName resolves a Class entry to its internal name.
func (cp *ConstantPool) ClassName(i uint16) (string, error) {
	c, err := lookup[ConstantClassInfo](cp, i)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.NameIndex)
}

func (cp *ConstantPool) NameAndType(i uint16) (name, descriptor string, err error) {
	c, err := lookup[ConstantNameAndTypeInfo](cp, i)
	if err != nil {
		return "", "", err
	}
	if name, err = cp.Utf8(c.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = cp.Utf8(c.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// StringValue resolves a String entry to its text.
func (cp *ConstantPool) StringValue(i uint16) (string, error) {
	c, err := lookup[ConstantStringInfo](cp, i)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.StringIndex)
}

// MemberRef resolves a Fieldref, Methodref or InterfaceMethodref entry.
func (cp *ConstantPool) MemberRef(i uint16) (class, name, descriptor string, err error) {
	c, err := cp.Get(i)
	if err != nil {
		return "", "", "", err
	}
	var classIndex, natIndex uint16
	switch ref := c.(type) {
	case ConstantFieldrefInfo:
		classIndex, natIndex = ref.ClassIndex, ref.NameAndTypeIndex
	case ConstantMethodrefInfo:
		classIndex, natIndex = ref.ClassIndex, ref.NameAndTypeIndex
	case ConstantInterfaceMethodrefInfo:
		classIndex, natIndex = ref.ClassIndex, ref.NameAndTypeIndex
	default:
		return "", "", "", &IndexError{Index: i, Want: ConstantMethodref, Got: c.Tag(), Err: ErrConstantPoolType}
	}
	if class, err = cp.ClassName(classIndex); err != nil {
		return "", "", "", err
	}
	name, descriptor, err = cp.NameAndType(natIndex)
	return class, name, descriptor, err
}

func (cp *ConstantPool) ModuleName(i uint16) (string, error) {
	c, err := lookup[ConstantModuleInfo](cp, i)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.NameIndex)
}

func (cp *ConstantPool) PackageName(i uint16) (string, error) {
	c, err := lookup[ConstantPackageInfo](cp, i)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.NameIndex)
}

func (cp *ConstantPool) GetUtf8(index uint16) string {
	s, _ := cp.Utf8(index)
	return s
}

func (cp *ConstantPool) GetClassName(index uint16) string {
	s, _ := cp.ClassName(index)
	return s
}

func (cp *ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	name, descriptor, _ = cp.NameAndType(index)
	return
}

func (cp *ConstantPool) GetString(index uint16) string {
	s, _ := cp.StringValue(index)
	return s
}

func (cp *ConstantPool) GetModuleName(index uint16) string {
	s, _ := cp.ModuleName(index)
	return s
}

func (cp *ConstantPool) GetPackageName(index uint16) string {
	s, _ := cp.PackageName(index)
	return s
}

// Find returns the lowest index holding an entry equal to c.
func (cp *ConstantPool) Find(c Constant) (uint16, bool) {
	i, ok := cp.index[c]
	return i, ok
}

// Add returns the index of an entry equal to c, appending c if there is
// none. Long and Double entries take two slots.
func (cp *ConstantPool) Add(c Constant) (uint16, error) {
	if i, ok := cp.index[c]; ok {
		return i, nil
	}
	return cp.push(c)
}

// push appends c without consulting the reverse index. Duplicate entries
// read from a class file keep their own slots; the index keeps the first.
func (cp *ConstantPool) push(c Constant) (uint16, error) {
	n := width(c)
	if len(cp.entries)+n > math.MaxUint16 {
		return 0, ErrConstantPoolFull
	}
	i := uint16(len(cp.entries))
	cp.entries = append(cp.entries, c)
	if n == 2 {
		cp.entries = append(cp.entries, placeholder{})
	}
	if _, ok := cp.index[c]; !ok {
		cp.index[c] = i
	}
	return i, nil
}

// Set replaces the entry at index i. The new entry must occupy the same
// number of slots as the old one.
func (cp *ConstantPool) Set(i uint16, c Constant) error {
	old, err := cp.Get(i)
	if err != nil {
		return err
	}
	if width(old) != width(c) {
		return &IndexError{Index: i, Want: old.Tag(), Got: c.Tag(), Err: ErrConstantPoolType}
	}
	cp.entries[i] = c

	if cp.index[old] == i {
		delete(cp.index, old)
		for j := int(i) + 1; j < len(cp.entries); j++ {
			if cp.entries[j] == old {
				cp.index[old] = uint16(j)
				break
			}
		}
	}
	if j, ok := cp.index[c]; !ok || i < j {
		cp.index[c] = i
	}
	return nil
}

func (cp *ConstantPool) AddUtf8(s string) (uint16, error) {
	if n := mutf8.EncodedLen(s); n > mutf8.MaxLen {
		return 0, fmt.Errorf("%w: %d bytes", ErrStringTooLong, n)
	}
	return cp.Add(ConstantUtf8Info{Value: s})
}

func (cp *ConstantPool) AddInteger(v int32) (uint16, error) {
	return cp.Add(ConstantIntegerInfo{Value: v})
}

func (cp *ConstantPool) AddFloat(v float32) (uint16, error) {
	return cp.Add(ConstantFloatInfo{Bits: math.Float32bits(v)})
}

func (cp *ConstantPool) AddLong(v int64) (uint16, error) {
	return cp.Add(ConstantLongInfo{Value: v})
}

func (cp *ConstantPool) AddDouble(v float64) (uint16, error) {
	return cp.Add(ConstantDoubleInfo{Bits: math.Float64bits(v)})
}

func (cp *ConstantPool) AddClass(name string) (uint16, error) {
	ni, err := cp.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantClassInfo{NameIndex: ni})
}

func (cp *ConstantPool) AddString(s string) (uint16, error) {
	si, err := cp.AddUtf8(s)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantStringInfo{StringIndex: si})
}

func (cp *ConstantPool) AddNameAndType(name, descriptor string) (uint16, error) {
	ni, err := cp.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	di, err := cp.AddUtf8(descriptor)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantNameAndTypeInfo{NameIndex: ni, DescriptorIndex: di})
}

func (cp *ConstantPool) memberRef(class, name, descriptor string) (ci, nti uint16, err error) {
	if ci, err = cp.AddClass(class); err != nil {
		return 0, 0, err
	}
	if nti, err = cp.AddNameAndType(name, descriptor); err != nil {
		return 0, 0, err
	}
	return ci, nti, nil
}

func (cp *ConstantPool) AddFieldref(class, name, descriptor string) (uint16, error) {
	ci, nti, err := cp.memberRef(class, name, descriptor)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantFieldrefInfo{ClassIndex: ci, NameAndTypeIndex: nti})
}

func (cp *ConstantPool) AddMethodref(class, name, descriptor string) (uint16, error) {
	ci, nti, err := cp.memberRef(class, name, descriptor)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantMethodrefInfo{ClassIndex: ci, NameAndTypeIndex: nti})
}

func (cp *ConstantPool) AddInterfaceMethodref(class, name, descriptor string) (uint16, error) {
	ci, nti, err := cp.memberRef(class, name, descriptor)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantInterfaceMethodrefInfo{ClassIndex: ci, NameAndTypeIndex: nti})
}

func (cp *ConstantPool) AddMethodType(descriptor string) (uint16, error) {
	di, err := cp.AddUtf8(descriptor)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantMethodTypeInfo{DescriptorIndex: di})
}

// AddMethodHandle adds a handle for an existing Fieldref, Methodref or
// InterfaceMethodref entry.
func (cp *ConstantPool) AddMethodHandle(kind MethodHandleKind, ref uint16) (uint16, error) {
	if _, err := cp.Get(ref); err != nil {
		return 0, err
	}
	return cp.Add(ConstantMethodHandleInfo{ReferenceKind: kind, ReferenceIndex: ref})
}

func (cp *ConstantPool) AddModule(name string) (uint16, error) {
	ni, err := cp.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantModuleInfo{NameIndex: ni})
}

func (cp *ConstantPool) AddPackage(name string) (uint16, error) {
	ni, err := cp.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	return cp.Add(ConstantPackageInfo{NameIndex: ni})
}
