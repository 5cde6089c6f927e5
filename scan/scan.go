// Package scan decodes every class file found under a directory or inside
// jar, zip and jmod archives, optionally checking that each one serializes
// back to its original bytes.
package scan

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/jclass/classfile"
)

// Separator joins an archive path and the name of an entry inside it.
const Separator = "!/"

// jmod files carry a four byte header in front of an ordinary zip archive.
var jmodMagic = []byte{'J', 'M', 1, 0}

type Result struct {
	// Path is the file path, with Separator between nested archive entries.
	Path         string
	ClassName    string
	MajorVersion uint16
	MinorVersion uint16
	Size         int
	Err          error
	Warnings     []string
	// Verified is set when the class was written back and compared.
	Verified bool
	// Mismatch is the first offset at which the written bytes differ from
	// the input, or -1.
	Mismatch int64
	Duration time.Duration
}

func (r *Result) OK() bool {
	return r.Err == nil && r.Mismatch < 0
}

type Summary struct {
	Classes    int
	Failed     int
	Verified   int
	Mismatched int
	Warnings   int
	Bytes      int64
}

type Option func(*Scanner)

// WithWorkers limits the number of classes decoded at the same time.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithExtensions sets the file extensions that are scanned. Entries ending
// in .class are decoded; the other extensions are opened as archives.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithParseOptions adds options to every classfile.Parse call.
func WithParseOptions(opts ...classfile.Option) Option {
	return func(s *Scanner) {
		s.parseOpts = append(s.parseOpts, opts...)
	}
}

// WithDecode decodes attribute bodies instead of only their lengths.
func WithDecode(decode bool) Option {
	return func(s *Scanner) {
		s.decode = decode
	}
}

// WithVerify writes every decoded class back and compares the result with
// the input. It implies WithDecode(true).
func WithVerify(verify bool) Option {
	return func(s *Scanner) {
		s.verify = verify
	}
}

func WithLogger(logger commonlog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Scanner collects one Result per class file. A Scanner may run several
// scans; results accumulate and are keyed by path.
type Scanner struct {
	workers    int
	extensions []string
	parseOpts  []classfile.Option
	decode     bool
	verify     bool
	log        commonlog.Logger
	results    *xsync.Map[string, *Result]
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		workers:    runtime.GOMAXPROCS(0),
		extensions: []string{".class", ".jar", ".zip", ".jmod"},
		results:    xsync.NewMap[string, *Result](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = commonlog.GetLogger("jclass.scan")
	}
	return s
}

type submitFunc func(name string, data []byte) error

// Scan walks path, which may be a directory, an archive or a single class
// file. Problems with individual files are recorded in their Result; the
// returned error is only set when the scan itself could not run or ctx was
// cancelled.
func (s *Scanner) Scan(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	submit := func(name string, data []byte) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			s.scanClass(name, data)
			return nil
		})
		return nil
	}

	start := time.Now()
	if info.IsDir() {
		err = s.walkDir(gctx, path, submit)
	} else {
		err = s.scanFile(gctx, path, submit)
	}
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err == nil {
		err = ctx.Err()
	}
	s.log.Infof("scanned %s in %s", path, time.Since(start))
	return err
}

func (s *Scanner) walkDir(ctx context.Context, root string, submit submitFunc) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.fail(p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.wanted(p) {
			return nil
		}
		return s.scanFile(ctx, p, submit)
	})
}

func (s *Scanner) scanFile(ctx context.Context, path string, submit submitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.fail(path, err)
		return nil
	}
	if isClass(path) {
		return submit(path, data)
	}
	return s.scanArchive(ctx, path, data, submit)
}

func (s *Scanner) scanArchive(ctx context.Context, name string, data []byte, submit submitFunc) error {
	if strings.EqualFold(filepath.Ext(name), ".jmod") && bytes.HasPrefix(data, jmodMagic) {
		data = data[len(jmodMagic):]
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.fail(name, fmt.Errorf("open archive: %w", err))
		return nil
	}
	s.log.Debugf("archive %s: %d entries", name, len(zr.File))

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || !s.wanted(f.Name) {
			continue
		}
		entry := name + Separator + f.Name
		data, err := readEntry(f)
		if err != nil {
			s.fail(entry, err)
			continue
		}
		if isClass(f.Name) {
			err = submit(entry, data)
		} else {
			err = s.scanArchive(ctx, entry, data, submit)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Scanner) wanted(name string) bool {
	ext := filepath.Ext(name)
	return slices.ContainsFunc(s.extensions, func(e string) bool { return strings.EqualFold(e, ext) })
}

func isClass(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".class")
}

func (s *Scanner) fail(path string, err error) {
	s.log.Warningf("%s: %s", path, err)
	s.results.Store(path, &Result{Path: path, Err: err, Mismatch: -1})
}

func (s *Scanner) scanClass(name string, data []byte) {
	start := time.Now()
	res := &Result{Path: name, Size: len(data), Mismatch: -1}

	opts := slices.Clone(s.parseOpts)
	opts = append(opts, classfile.WithWarningHandler(func(err error) {
		res.Warnings = append(res.Warnings, err.Error())
	}))
	if !s.decode && !s.verify {
		opts = append(opts, classfile.WithSkipAttributes())
	}

	var cf *classfile.ClassFile
	if s.verify {
		cf, res.Mismatch, res.Err = Verify(data, opts...)
		res.Verified = res.Err == nil
	} else {
		cf, res.Err = classfile.ParseBytes(data, opts...)
	}
	if cf != nil {
		res.ClassName = cf.ClassName()
		res.MajorVersion = cf.MajorVersion
		res.MinorVersion = cf.MinorVersion
	}
	res.Duration = time.Since(start)

	switch {
	case res.Err != nil:
		s.log.Warningf("%s: %s", name, res.Err)
	case res.Mismatch >= 0:
		s.log.Warningf("%s: written class differs at offset %d", name, res.Mismatch)
	default:
		s.log.Debugf("%s: %s in %s", name, res.ClassName, res.Duration)
	}
	s.results.Store(name, res)
}

// Results returns every result sorted by path.
func (s *Scanner) Results() []*Result {
	results := make([]*Result, 0, s.results.Size())
	s.results.Range(func(_ string, r *Result) bool {
		results = append(results, r)
		return true
	})
	slices.SortFunc(results, func(a, b *Result) int { return strings.Compare(a.Path, b.Path) })
	return results
}

// Result returns the result recorded for path.
func (s *Scanner) Result(path string) (*Result, bool) {
	return s.results.Load(path)
}

func (s *Scanner) Summary() Summary {
	var sum Summary
	s.results.Range(func(_ string, r *Result) bool {
		sum.Bytes += int64(r.Size)
		sum.Warnings += len(r.Warnings)
		if r.Err != nil {
			sum.Failed++
		} else {
			sum.Classes++
		}
		if r.Verified {
			sum.Verified++
			if r.Mismatch >= 0 {
				sum.Mismatched++
			}
		}
		return true
	})
	return sum
}
