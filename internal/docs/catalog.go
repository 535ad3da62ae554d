package docs

// catalogEntry 为内置目录项，since 表示引入该内置函数的 Go 版本（major.minor）。
type catalogEntry struct {
	fn         BuiltinFunction
	sinceMajor int
	sinceMinor int
}

var builtinCatalog = []catalogEntry{
	{fn: BuiltinFunction{
		Name:      "len",
		Signature: "func len(v Type) int",
		Documentation: "The len built-in function returns the length of v, according to its type:\n" +
			"- Array: the number of elements in v.\n" +
			"- Pointer to array: the number of elements in *v (even if v is nil).\n" +
			"- Slice, or map: the number of elements in v; if v is nil, len(v) is zero.\n" +
			"- String: the number of bytes in v.\n" +
			"- Channel: the number of elements queued (unread) in the channel buffer; if v is nil, len(v) is zero.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "cap",
		Signature: "func cap(v Type) int",
		Documentation: "The cap built-in function returns the capacity of v, according to its type:\n" +
			"- Array: the number of elements in v (same as len(v)).\n" +
			"- Pointer to array: the number of elements in *v (same as len(v)).\n" +
			"- Slice: the maximum length the slice can reach when resliced; if v is nil, cap(v) is zero.\n" +
			"- Channel: the channel buffer capacity, in units of elements; if v is nil, cap(v) is zero.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "make",
		Signature: "func make(t Type, size ...IntegerType) Type",
		Documentation: "The make built-in function allocates and initializes an object of type slice, map, or chan (only). " +
			"Like new, the first argument is a type, not a value. Unlike new, make's return type is the same as the type of its argument, not a pointer to it. " +
			"The specification of the result depends on the type:\n" +
			"- Slice: The size specifies the length. The capacity of the slice is equal to its length. A second integer argument may be provided to specify a different capacity; it must be no smaller than the length.\n" +
			"- Map: An empty map is allocated with enough space to hold the specified number of elements. The size may be omitted, in which case a small starting size is allocated.\n" +
			"- Channel: The channel's buffer is initialized with the specified buffer capacity. If zero, or the size is omitted, the channel is unbuffered.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "new",
		Signature: "func new(Type) *Type",
		Documentation: "The new built-in function allocates memory. The first argument is a type, not a value, " +
			"and the value returned is a pointer to a newly allocated zero value of that type.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "append",
		Signature: "func append(slice []Type, elems ...Type) []Type",
		Documentation: "The append built-in function appends elements to the end of a slice. " +
			"If it has sufficient capacity, the destination is resliced to accommodate the new elements. " +
			"If it does not, a new underlying array will be allocated. Append returns the updated slice. " +
			"It is therefore necessary to store the result of append, often in the variable holding the slice itself.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "copy",
		Signature: "func copy(dst, src []Type) int",
		Documentation: "The copy built-in function copies elements from a source slice into a destination slice. " +
			"(As a special case, it also will copy bytes from a string to a slice of bytes.) " +
			"The source and destination may overlap. Copy returns the number of elements copied, which will be the minimum of len(src) and len(dst).",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "delete",
		Signature: "func delete(m map[Type]Type1, key Type)",
		Documentation: "The delete built-in function deletes the element with the specified key (m[key]) from the map. " +
			"If m is nil or there is no such element, delete is a no-op.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "close",
		Signature: "func close(c chan<- Type)",
		Documentation: "The close built-in function closes a channel, which must be either bidirectional or send-only. " +
			"It should be executed only by the sender, never the receiver, and has the effect of shutting down the channel after the last sent value is received. " +
			"After the last value has been received from a closed channel c, any receive from c will succeed without blocking, returning the zero value for the channel element.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "clear",
		Signature: "func clear[T ~[]Type | ~map[Type]Type1](t T)",
		Documentation: "The clear built-in function clears maps and slices. " +
			"For maps, clear deletes all entries, resulting in an empty map. " +
			"For slices, clear sets all elements up to the length of the slice to the zero value of the respective element type. " +
			"If the argument type is a type parameter, the type parameter's type set must contain only map or slice types, and clear performs the operation implied by the type argument. " +
			"If t is nil, clear is a no-op.",
	}, sinceMajor: 1, sinceMinor: 21},
	{fn: BuiltinFunction{
		Name:      "min",
		Signature: "func min[T cmp.Ordered](x T, y ...T) T",
		Documentation: "The min built-in function returns the smallest value of a fixed number of arguments of cmp.Ordered types. " +
			"There must be at least one argument. If T is a floating-point type and any of the arguments are NaNs, min will return NaN.",
	}, sinceMajor: 1, sinceMinor: 21},
	{fn: BuiltinFunction{
		Name:      "max",
		Signature: "func max[T cmp.Ordered](x T, y ...T) T",
		Documentation: "The max built-in function returns the largest value of a fixed number of arguments of cmp.Ordered types. " +
			"There must be at least one argument. If T is a floating-point type and any of the arguments are NaNs, max will return NaN.",
	}, sinceMajor: 1, sinceMinor: 21},
	{fn: BuiltinFunction{
		Name:      "complex",
		Signature: "func complex(r, i FloatType) ComplexType",
		Documentation: "The complex built-in function constructs a complex value from two floating-point values. " +
			"The real and imaginary parts must be of the same size, either float32 or float64 (or assignable to them), " +
			"and the return value will be the corresponding complex type (complex64 for float32, complex128 for float64).",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "real",
		Signature: "func real(c ComplexType) FloatType",
		Documentation: "The real built-in function returns the real part of the complex number c. " +
			"The return value will be floating point type corresponding to the type of c.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "imag",
		Signature: "func imag(c ComplexType) FloatType",
		Documentation: "The imag built-in function returns the imaginary part of the complex number c. " +
			"The return value will be floating point type corresponding to the type of c.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "panic",
		Signature: "func panic(v any)",
		Documentation: "The panic built-in function stops normal execution of the current goroutine. " +
			"When a function F calls panic, normal execution of F stops immediately. Any functions whose execution was deferred by F are run in the usual way, and then F returns to its caller. " +
			"To the caller G, the invocation of F then behaves like a call to panic, terminating G's execution and running any deferred functions. " +
			"This continues until all functions in the executing goroutine have stopped, in reverse order. " +
			"At that point, the program is terminated with a non-zero exit code. " +
			"This termination sequence is called panicking and can be controlled by the built-in function recover.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "recover",
		Signature: "func recover() any",
		Documentation: "The recover built-in function allows a program to manage behavior of a panicking goroutine. " +
			"Executing a call to recover inside a deferred function (but not any function called by it) stops the panicking sequence by restoring normal execution and retrieves the error value passed to the call of panic. " +
			"If recover is called outside the deferred function it will not stop a panicking sequence. " +
			"In this case, or when the goroutine is not panicking, recover returns nil.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "print",
		Signature: "func print(args ...Type)",
		Documentation: "The print built-in function formats its arguments in an implementation-specific way and writes the result to standard error. " +
			"Print is useful for bootstrapping and debugging; it is not guaranteed to stay in the language.",
	}, sinceMajor: 1},
	{fn: BuiltinFunction{
		Name:      "println",
		Signature: "func println(args ...Type)",
		Documentation: "The println built-in function formats its arguments in an implementation-specific way and writes the result to standard error. " +
			"Spaces are always added between arguments and a newline is appended. " +
			"Println is useful for bootstrapping and debugging; it is not guaranteed to stay in the language.",
	}, sinceMajor: 1},
}

// CatalogFor 返回适用于指定版本的内置函数目录。
// 无法解析的版本（如预发布代号）以及 1.0 之前的占位版本返回完整目录。
func CatalogFor(version string) []BuiltinFunction {
	major, minor, ok := releaseLine(version)
	ok = ok && major >= 1
	result := make([]BuiltinFunction, 0, len(builtinCatalog))
	for _, entry := range builtinCatalog {
		if ok && (major < entry.sinceMajor || (major == entry.sinceMajor && minor < entry.sinceMinor)) {
			continue
		}
		result = append(result, entry.fn)
	}
	return result
}
