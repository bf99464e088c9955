/*
Package semtok turns macro text into semantic tokens.

Token Pipeline:
--------------

	       Input
	         |
	         v
	  +------------+
	  | Document   |
	  | Text       |
	  +------------+
	         |
	   Scan Regions
	         |
	         v
	  +------------+
	  | Macro      |
	  | Regions    |
	  +------------+
	         |
	  Lex Each Region
	         |
	         v
	  +------------+
	  | Semantic   |
	  | Tokens     |
	  +------------+

Each region is lexed left to right: delimiters, separators and the
closing slash become operator tokens, flag symbols become keyword
tokens, the identifier becomes a macro token and argument segments
become parameter or number tokens.

Builtin macro identifiers carry the defaultLibrary modifier so clients
can tint them differently from pack-defined macros. Flags that parse
but do nothing yet carry the deprecated modifier, which most clients
render struck through.
*/
package semtok
