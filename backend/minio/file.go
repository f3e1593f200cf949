package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/vfs/core"
)

// writer buffers small writes and switches to a streaming upload once the
// multipart threshold is crossed. The object appears on Close.
type writer struct {
	fs     *FS
	key    string
	name   string
	buf    *bytes.Buffer
	pipe   *io.PipeWriter
	done   chan error
	n      int64
	closed bool
}

func newWriter(m *FS, key, name string) *writer {
	return &writer{fs: m, key: key, name: name, buf: new(bytes.Buffer)}
}

func (w *writer) Read([]byte) (int, error) {
	return 0, pathError("read", w.name, fs.ErrInvalid)
}

// Write appends p to the pending object.
//
//nolint:contextcheck // io.Writer cannot take a context
func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, pathError("write", w.name, fs.ErrClosed)
	}
	if w.pipe == nil && int64(w.buf.Len()+len(p)) <= w.fs.multipartThreshold {
		n, _ := w.buf.Write(p)
		w.n += int64(n)
		return n, nil
	}
	if w.pipe == nil {
		if err := w.startStreaming(); err != nil {
			return 0, err
		}
	}
	n, err := w.pipe.Write(p)
	w.n += int64(n)
	return n, pathError("write", w.name, err)
}

func (w *writer) startStreaming() error {
	pr, pw := io.Pipe()
	w.pipe = pw
	w.done = make(chan error, 1)

	go func() {
		_, err := w.fs.client.PutObject(context.Background(), w.fs.bucket, w.key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		_ = pr.CloseWithError(err)
		w.done <- translate(err)
	}()

	if w.buf.Len() > 0 {
		if _, err := pw.Write(w.buf.Bytes()); err != nil {
			return pathError("write", w.name, err)
		}
	}
	w.buf = nil
	return nil
}

func (w *writer) Stat() (fs.FileInfo, error) {
	return &fileInfo{name: baseName(w.name), size: w.n, modTime: time.Now()}, nil
}

func (w *writer) Name() string {
	return w.name
}

// Sync uploads buffered data. Streaming uploads complete on Close.
func (w *writer) Sync() error {
	if w.closed || w.pipe != nil {
		return nil
	}
	return w.put(context.Background())
}

// Close finishes the upload. It is safe to call more than once.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.pipe != nil {
		_ = w.pipe.Close()
		return pathError("close", w.name, <-w.done)
	}
	return pathError("close", w.name, w.put(context.Background()))
}

func (w *writer) put(ctx context.Context) error {
	_, err := w.fs.client.PutObject(ctx, w.fs.bucket, w.key, bytes.NewReader(w.buf.Bytes()), int64(w.buf.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return translate(err)
}

// reader streams an object without buffering it. Seek reopens the object
// with a range request.
type reader struct {
	fs     *FS
	key    string
	name   string
	obj    *minio.Object
	info   minio.ObjectInfo
	offset int64
	closed bool
}

func newReader(ctx context.Context, m *FS, key, name string) (*reader, error) {
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, pathError("open", name, translate(err))
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, pathError("open", name, translate(err))
	}
	return &reader{fs: m, key: key, name: name, obj: obj, info: info}, nil
}

func (r *reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, pathError("read", r.name, fs.ErrClosed)
	}
	n, err := r.obj.Read(p)
	r.offset += int64(n)
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (r *reader) Write([]byte) (int, error) {
	return 0, pathError("write", r.name, fs.ErrInvalid)
}

func (r *reader) Stat() (fs.FileInfo, error) {
	return &fileInfo{name: baseName(r.name), size: r.info.Size, modTime: r.info.LastModified}, nil
}

func (r *reader) Name() string {
	return r.name
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.obj.Close()
}

//nolint:contextcheck // fs.File cannot take a context
func (r *reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, pathError("seek", r.name, fs.ErrClosed)
	}

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = r.offset + offset
	case io.SeekEnd:
		next = r.info.Size + offset
	default:
		return 0, pathError("seek", r.name, fs.ErrInvalid)
	}
	if next < 0 {
		return 0, pathError("seek", r.name, fs.ErrInvalid)
	}
	if next == r.offset {
		return next, nil
	}

	opts := minio.GetObjectOptions{}
	if next > 0 {
		if err := opts.SetRange(next, 0); err != nil {
			return 0, pathError("seek", r.name, err)
		}
	}
	obj, err := r.fs.client.GetObject(context.Background(), r.fs.bucket, r.key, opts)
	if err != nil {
		return 0, pathError("seek", r.name, translate(err))
	}
	_ = r.obj.Close()
	r.obj = obj
	r.offset = next
	return next, nil
}

//nolint:contextcheck // io.ReaderAt cannot take a context
func (r *reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, pathError("readat", r.name, fs.ErrClosed)
	}
	if off < 0 {
		return 0, pathError("readat", r.name, fs.ErrInvalid)
	}
	if off >= r.info.Size {
		return 0, io.EOF
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+int64(len(p))-1); err != nil {
		return 0, pathError("readat", r.name, err)
	}
	obj, err := r.fs.client.GetObject(context.Background(), r.fs.bucket, r.key, opts)
	if err != nil {
		return 0, pathError("readat", r.name, translate(err))
	}
	defer func() { _ = obj.Close() }()

	n, err := io.ReadFull(obj, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

var (
	_ core.File   = (*writer)(nil)
	_ core.Syncer = (*writer)(nil)
	_ core.File   = (*reader)(nil)
	_ io.Seeker   = (*reader)(nil)
	_ io.ReaderAt = (*reader)(nil)
)
