// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the inspector configuration from JSON or YAML.
//
// Example (YAML):
//
//	trustIndex:
//	  dir: /var/lib/tls-cert-inspector/subjectKeyIdentifier
//	  bundle: /etc/ssl/certs/ca-certificates.crt
//	  cache:
//	    maxSize: 512
//	    ttlSeconds: 300
//	inspect:
//	  timeoutSeconds: 10
//	  maxDepth: 10
//	mcp:
//	  logFile: /tmp/tls-cert-inspector-mcp.log
package config
