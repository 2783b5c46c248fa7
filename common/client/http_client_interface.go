/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package client

import "net/http"

// HTTPClient lets tests substitute the outbound HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
