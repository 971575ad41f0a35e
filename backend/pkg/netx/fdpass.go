// Package `netx` passes open files between processes over Unix domain
// sockets.
//
// `walrestore restore --fd-socket=<path>` uses it to hand the descriptor of a
// restored segment to the host process, which keeps ownership of the file.
package netx

import (
	"errors"
	"net"
	"os"

	"github.com/ftrvxmtrx/fd"
)

var ErrFdGetInvalid = errors.New("fd.Get() returned invalid result")

func WriteFdFile(via *net.UnixConn, f *os.File) error {
	return fd.Put(via, f)
}

func ReadFdFile(via *net.UnixConn) (*os.File, error) {
	fs, err := fd.Get(via, 1, nil)
	if err != nil {
		return nil, err
	}
	if len(fs) != 1 {
		for _, f := range fs {
			_ = f.Close()
		}
		return nil, ErrFdGetInvalid
	}
	return fs[0], nil
}

// `SendFdFile()` connects to the Unix socket `path` and passes `f`.  The
// receiver gets a duplicate descriptor; `f` remains open.
func SendFdFile(path string, f *os.File) error {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{
		Name: path,
		Net:  "unix",
	})
	if err != nil {
		return err
	}
	err = WriteFdFile(conn, f)
	if err2 := conn.Close(); err == nil {
		err = err2
	}
	return err
}

// `AcceptFdFile()` accepts one connection on `lis` and receives one file.
func AcceptFdFile(lis *net.UnixListener) (*os.File, error) {
	conn, err := lis.AcceptUnix()
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()
	return ReadFdFile(conn)
}
