package internal

import "github.com/nats-io/nats.go"

// Options describes how to connect to a NATS server.  It is embedded in the client and worker options, so the same
// configuration items apply to both.
type Options struct {
	// URL specifies the NATS server URL, which defaults to nats://localhost:4222.
	URL string `cfg:"nats_url"`

	// ClientName is used in NATS server logs to identify the connection.
	ClientName string `cfg:"nats_client_name"`

	// NKeyFile provides the path to an nkey seed file used to authenticate with the NATS server.
	NKeyFile string `cfg:"nats_nk"`

	// CA provides the path to a file of trusted certificates for verifying the NATS server.  If not provided, the
	// host certificate authorities are used.
	CA string `cfg:"nats_ca"`
}

// Dial will connect to the NATS server using the options provided.
func (opts *Options) Dial(more ...nats.Option) (*nats.Conn, error) {
	options := make([]nats.Option, 0, 8)
	if opts.NKeyFile != `` {
		opt, err := nats.NkeyOptionFromSeed(opts.NKeyFile)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	if opts.CA != `` {
		options = append(options, nats.RootCAs(opts.CA))
	}
	if opts.ClientName != `` {
		options = append(options, nats.Name(opts.ClientName))
	}
	options = append(options, more...)
	url := opts.URL
	if url == `` {
		url = nats.DefaultURL
	}
	return nats.Connect(url, options...)
}
