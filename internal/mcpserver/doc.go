// Package mcpserver exposes the query surface as Model Context Protocol tools.
//
// Tools:
//   - list_builtin_functions: every builtin function descriptor for the loaded version
//   - get_builtin_function {function_name}: one descriptor
//   - search_std_lib {query, limit?}: ranked standard library items
//   - get_std_lib_item {name}: one standard library item
//   - source_archive_info: kind, size and checksum of the cached source archive
//
// Results are JSON text content. Lookups that find nothing return a tool
// error result rather than a protocol error.
package mcpserver
