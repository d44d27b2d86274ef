// Package main (cmd/gateway_client) is a command-line client for the gateway.
//
//	gateway-client --server-addr http://localhost:8080 resolve --tenant photos --key 2024/beach.jpg
//	gateway-client fetch --tenant docs --key reports/q1.pdf --output q1.pdf
//	gateway-client tenants
package main
