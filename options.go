package rqwire

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/rqwire/rqwire/errs"
	"github.com/rqwire/rqwire/logger"
)

// Scheme selects the connection scheme.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// ConnectOptions describes how to reach a single rqlite node. Build it with
// NewConnectOptions and the chainable setters, or load it from a YAML file
// with OptionsFromFile, then call Connect.
//
//	conn, err := rqwire.NewConnectOptions("my.node.local", 4001).
//	    Scheme(rqwire.SchemeHTTPS).
//	    User("root").
//	    Pass("root").
//	    Connect(ctx)
//
// A successful Connect snapshots the options into the Connection; mutating
// the builder afterwards has no effect on the live connection.
type ConnectOptions struct {
	scheme            Scheme
	host              string
	port              int
	user              string
	pass              string
	acceptInvalidCert bool
	log               *logger.Logger
}

// NewConnectOptions starts a builder for the given node address.
// The scheme defaults to HTTP.
func NewConnectOptions(host string, port int) *ConnectOptions {
	return &ConnectOptions{
		scheme: SchemeHTTP,
		host:   host,
		port:   port,
		log:    logger.Nop(),
	}
}

// Scheme sets the connection scheme (http or https).
func (o *ConnectOptions) Scheme(s Scheme) *ConnectOptions {
	o.scheme = s
	return o
}

// User sets the username for Basic Auth. The Authorization header is only
// sent when both user and pass are set.
func (o *ConnectOptions) User(user string) *ConnectOptions {
	o.user = user
	return o
}

// Pass sets the password for Basic Auth.
func (o *ConnectOptions) Pass(pass string) *ConnectOptions {
	o.pass = pass
	return o
}

// AcceptInvalidCert disables certificate chain and hostname verification for
// HTTPS connections. Never enable this outside of test environments.
func (o *ConnectOptions) AcceptInvalidCert(accept bool) *ConnectOptions {
	o.acceptInvalidCert = accept
	return o
}

// Logger installs a structured logger. The default discards everything.
func (o *ConnectOptions) Logger(l *logger.Logger) *ConnectOptions {
	if l != nil {
		o.log = l
	}
	return o
}

// hostPort returns the host:port pair used for dialing and the Host header.
func (o *ConnectOptions) hostPort() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

// optionsFile is the YAML shape accepted by OptionsFromFile.
type optionsFile struct {
	Scheme            string `yaml:"scheme"`
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	User              string `yaml:"user"`
	Password          string `yaml:"password"`
	AcceptInvalidCert bool   `yaml:"accept_invalid_cert"`
}

// OptionsFromFile loads connection options from a YAML file:
//
//	scheme: https
//	host: my.node.local
//	port: 4001
//	user: root
//	password: root
//	accept_invalid_cert: false
//
// scheme defaults to http when omitted; host and a positive port are required.
func OptionsFromFile(path string) (*ConnectOptions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindDataSer, "failed to read options file", err)
	}

	var f optionsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errs.Wrap(errs.KindDataSer, "failed to parse options file", err)
	}

	if f.Host == "" || f.Port <= 0 {
		return nil, errs.New(errs.KindDataSer, "options file must set host and a positive port")
	}

	o := NewConnectOptions(f.Host, f.Port)
	switch f.Scheme {
	case "", string(SchemeHTTP):
	case string(SchemeHTTPS):
		o.Scheme(SchemeHTTPS)
	default:
		return nil, errs.New(errs.KindDataSer, fmt.Sprintf("unknown scheme %q in options file", f.Scheme))
	}
	o.User(f.User).Pass(f.Password).AcceptInvalidCert(f.AcceptInvalidCert)
	return o, nil
}
