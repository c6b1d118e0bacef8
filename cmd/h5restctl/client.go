// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/jsontree"
	"github.com/HDFGroup/vol-rest-go/respparse"
	"github.com/HDFGroup/vol-rest-go/transport"
)

// resolveConfig layers --config file values under the --endpoint/
// --filepath flags; flags always win when both are given.
func resolveConfig(c *cli.Context) (endpoint, filepath string, err error) {
	endpoint = c.GlobalString("endpoint")
	filepath = c.GlobalString("filepath")

	if cfgPath := c.GlobalString("config"); cfgPath != "" {
		cfg, err := loadConfigYaml(cfgPath)
		if err != nil {
			return "", "", fmt.Errorf("loading config: %v", err)
		}
		if endpoint == "" {
			endpoint = cfg.Endpoint
		}
		if filepath == "" {
			filepath = cfg.Filepath
		}
	}

	if endpoint == "" {
		return "", "", cli.NewExitError("an --endpoint (or config \"endpoint\") is required", 1)
	}
	if filepath == "" {
		filepath = "h5restctl.h5"
	}
	return endpoint, filepath, nil
}

// connect builds and initializes a Transport from the context's
// --endpoint/--filepath/--config flags, then opens the file's root
// group by querying the endpoint's root response.
func connect(c *cli.Context) (*transport.Transport, *handle.Handle, error) {
	endpoint, filepath, err := resolveConfig(c)
	if err != nil {
		return nil, nil, err
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing --endpoint: %v", err)
	}

	log := logrus.StandardLogger()
	tr := transport.New(base, filepath, log)
	tr.Init()

	target, err := tr.Template("", nil)
	if err != nil {
		tr.Teardown()
		return nil, nil, err
	}
	var resp map[string]interface{}
	if err := tr.Get(target, &resp); err != nil {
		tr.Teardown()
		return nil, nil, fmt.Errorf("querying root: %v", err)
	}
	rootURI, ok, err := respparse.CopyObjectURI(jsontree.Wrap(resp))
	if err != nil || !ok {
		tr.Teardown()
		return nil, nil, fmt.Errorf("root response did not name a root group URI")
	}

	file := handle.NewFile(rootURI, filepath, handle.IntentReadWrite, dcpl.Default())
	return tr, file, nil
}
