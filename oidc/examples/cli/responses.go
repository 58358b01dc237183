// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

const successHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Oasis login</title>
</head>
<body>
  <h1>Signed in</h1>
  <p>You can close this window and return to the terminal.</p>
</body>
</html>
`
