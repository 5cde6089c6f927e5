package classfile

type ModuleAttribute struct {
	ModuleNameIndex    uint16
	ModuleFlags        AccessFlags
	ModuleVersionIndex uint16
	Requires           []ModuleRequires
	Exports            []ModuleExports
	Opens              []ModuleOpens
	Uses               []uint16
	Provides           []ModuleProvides
}

type ModuleRequires struct {
	RequiresIndex        uint16
	RequiresFlags        AccessFlags
	RequiresVersionIndex uint16
}

type ModuleExports struct {
	ExportsIndex   uint16
	ExportsFlags   AccessFlags
	ExportsToIndex []uint16
}

type ModuleOpens struct {
	OpensIndex   uint16
	OpensFlags   AccessFlags
	OpensToIndex []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

func (a *ModuleAttribute) Kind() AttributeKind { return AttrModule }

func (a *ModuleAttribute) decode(d *decoder) {
	a.ModuleNameIndex = d.r.U2()
	a.ModuleFlags = AccessFlags(d.r.U2())
	a.ModuleVersionIndex = d.r.U2()

	a.Requires = make([]ModuleRequires, d.r.U2())
	for i := range a.Requires {
		a.Requires[i] = ModuleRequires{
			RequiresIndex:        d.r.U2(),
			RequiresFlags:        AccessFlags(d.r.U2()),
			RequiresVersionIndex: d.r.U2(),
		}
	}

	a.Exports = make([]ModuleExports, d.r.U2())
	for i := range a.Exports {
		x := &a.Exports[i]
		x.ExportsIndex = d.r.U2()
		x.ExportsFlags = AccessFlags(d.r.U2())
		x.ExportsToIndex = d.u2s()
	}

	a.Opens = make([]ModuleOpens, d.r.U2())
	for i := range a.Opens {
		o := &a.Opens[i]
		o.OpensIndex = d.r.U2()
		o.OpensFlags = AccessFlags(d.r.U2())
		o.OpensToIndex = d.u2s()
	}

	a.Uses = d.u2s()

	a.Provides = make([]ModuleProvides, d.r.U2())
	for i := range a.Provides {
		p := &a.Provides[i]
		p.ProvidesIndex = d.r.U2()
		p.ProvidesWithIndex = d.u2s()
	}
}

func (a *ModuleAttribute) encode(e *encoder) {
	e.w.U2(a.ModuleNameIndex)
	e.w.U2(uint16(a.ModuleFlags))
	e.w.U2(a.ModuleVersionIndex)

	e.count(len(a.Requires))
	for _, r := range a.Requires {
		e.w.U2(r.RequiresIndex)
		e.w.U2(uint16(r.RequiresFlags))
		e.w.U2(r.RequiresVersionIndex)
	}

	e.count(len(a.Exports))
	for _, x := range a.Exports {
		e.w.U2(x.ExportsIndex)
		e.w.U2(uint16(x.ExportsFlags))
		e.u2s(x.ExportsToIndex)
	}

	e.count(len(a.Opens))
	for _, o := range a.Opens {
		e.w.U2(o.OpensIndex)
		e.w.U2(uint16(o.OpensFlags))
		e.u2s(o.OpensToIndex)
	}

	e.u2s(a.Uses)

	e.count(len(a.Provides))
	for _, p := range a.Provides {
		e.w.U2(p.ProvidesIndex)
		e.u2s(p.ProvidesWithIndex)
	}
}

type ModulePackagesAttribute struct {
	PackageIndex []uint16
}

func (a *ModulePackagesAttribute) Kind() AttributeKind { return AttrModulePackages }
func (a *ModulePackagesAttribute) decode(d *decoder)   { a.PackageIndex = d.u2s() }
func (a *ModulePackagesAttribute) encode(e *encoder)   { e.u2s(a.PackageIndex) }

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

func (a *ModuleMainClassAttribute) Kind() AttributeKind { return AttrModuleMainClass }
func (a *ModuleMainClassAttribute) decode(d *decoder)   { a.MainClassIndex = d.r.U2() }
func (a *ModuleMainClassAttribute) encode(e *encoder)   { e.w.U2(a.MainClassIndex) }

// ModuleTargetAttribute names the platform a module was compiled for. It is
// written by jlink and the JDK build rather than by javac.
type ModuleTargetAttribute struct {
	TargetPlatformIndex uint16
}

func (a *ModuleTargetAttribute) Kind() AttributeKind { return AttrModuleTarget }
func (a *ModuleTargetAttribute) decode(d *decoder)   { a.TargetPlatformIndex = d.r.U2() }
func (a *ModuleTargetAttribute) encode(e *encoder)   { e.w.U2(a.TargetPlatformIndex) }

type ModuleHashesAttribute struct {
	AlgorithmIndex uint16
	Hashes         []ModuleHash
}

type ModuleHash struct {
	ModuleNameIndex uint16
	Hash            []byte
}

func (a *ModuleHashesAttribute) Kind() AttributeKind { return AttrModuleHashes }

func (a *ModuleHashesAttribute) decode(d *decoder) {
	a.AlgorithmIndex = d.r.U2()
	a.Hashes = make([]ModuleHash, d.r.U2())
	for i := range a.Hashes {
		h := &a.Hashes[i]
		h.ModuleNameIndex = d.r.U2()
		h.Hash = d.r.Bytes(int(d.r.U2()))
	}
}

func (a *ModuleHashesAttribute) encode(e *encoder) {
	e.w.U2(a.AlgorithmIndex)
	e.count(len(a.Hashes))
	for _, h := range a.Hashes {
		e.w.U2(h.ModuleNameIndex)
		e.count(len(h.Hash))
		e.w.WriteBytes(h.Hash)
	}
}

// ModuleResolutionAttribute carries the JDK's module resolution flags.
type ModuleResolutionAttribute struct {
	ResolutionFlags uint16
}

func (a *ModuleResolutionAttribute) Kind() AttributeKind { return AttrModuleResolution }
func (a *ModuleResolutionAttribute) decode(d *decoder)   { a.ResolutionFlags = d.r.U2() }
func (a *ModuleResolutionAttribute) encode(e *encoder)   { e.w.U2(a.ResolutionFlags) }
