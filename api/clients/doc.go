/*
Package clients provides an HTTP client for the gateway.

GatewayClient can resolve an object to the presigned URL a redirect-mode
tenant hands out, download an object from either kind of tenant, and list the
configured tenants:

	c := &clients.GatewayClient{ServerAddr: "http://localhost:8080"}
	url, err := c.Resolve("photos", "2024/beach.jpg")
	n, err := c.Fetch("docs", "reports/q1.pdf", os.Stdout)

A 404 from the gateway is reported as an error wrapping ErrNotFound.
*/
package clients
