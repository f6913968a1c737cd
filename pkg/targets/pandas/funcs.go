package pandas

import (
	"fmt"
	"strings"

	"github.com/dashport-dev/dashport/pkg/target"
)

// functions maps upper-case calculation function names to their pandas
// renderings. Argument expressions arrive already rendered and
// self-contained, so method chaining on them is safe.
var functions = map[string]target.FuncSpec{
	// Aggregates.
	"SUM":    aggregate("SUM", "sum"),
	"AVG":    aggregate("AVG", "mean"),
	"MEDIAN": aggregate("MEDIAN", "median"),
	"COUNT":  aggregate("COUNT", "count"),
	"COUNTD": aggregate("COUNTD", "nunique"),
	"STDEV":  aggregate("STDEV", "std"),
	"VAR":    aggregate("VAR", "var"),

	// MIN and MAX aggregate with one argument and compare row-wise with two.
	"MIN": {
		Name: "MIN", Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 2, AggName: "min",
		Emit: func(args []string) string {
			if len(args) == 2 {
				return fmt.Sprintf("np.minimum(%s, %s)", args[0], args[1])
			}
			return fmt.Sprintf("%s.min()", args[0])
		},
	},
	"MAX": {
		Name: "MAX", Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 2, AggName: "max",
		Emit: func(args []string) string {
			if len(args) == 2 {
				return fmt.Sprintf("np.maximum(%s, %s)", args[0], args[1])
			}
			return fmt.Sprintf("%s.max()", args[0])
		},
	},

	// Math.
	"ABS":     unary("ABS", "np.abs(%s)"),
	"SQRT":    unary("SQRT", "np.sqrt(%s)"),
	"EXP":     unary("EXP", "np.exp(%s)"),
	"LN":      unary("LN", "np.log(%s)"),
	"LOG":     unary("LOG", "np.log10(%s)"),
	"CEILING": unary("CEILING", "np.ceil(%s)"),
	"FLOOR":   unary("FLOOR", "np.floor(%s)"),
	"SIGN":    unary("SIGN", "np.sign(%s)"),
	"ROUND": {
		Name: "ROUND", Kind: target.FuncScalar, MinArgs: 1, MaxArgs: 2,
		Emit: func(args []string) string {
			if len(args) == 2 {
				return fmt.Sprintf("np.round(%s, %s)", args[0], args[1])
			}
			return fmt.Sprintf("np.round(%s)", args[0])
		},
	},
	"POWER": binary("POWER", "np.power(%s, %s)"),

	// Strings.
	"LEN":   unary("LEN", "%s.str.len()"),
	"LOWER": unary("LOWER", "%s.str.lower()"),
	"UPPER": unary("UPPER", "%s.str.upper()"),
	"TRIM":  unary("TRIM", "%s.str.strip()"),
	"LTRIM": unary("LTRIM", "%s.str.lstrip()"),
	"RTRIM": unary("RTRIM", "%s.str.rstrip()"),
	"CONTAINS": binary("CONTAINS",
		"%s.str.contains(%s, regex=False)"),
	"STARTSWITH": binary("STARTSWITH", "%s.str.startswith(%s)"),
	"ENDSWITH":   binary("ENDSWITH", "%s.str.endswith(%s)"),
	"REPLACE": {
		Name: "REPLACE", Kind: target.FuncScalar, MinArgs: 3, MaxArgs: 3,
		Emit: func(args []string) string {
			return fmt.Sprintf("%s.str.replace(%s, %s, regex=False)", args[0], args[1], args[2])
		},
	},
	"LEFT":  binary("LEFT", "%s.str.slice(0, %s)"),
	"RIGHT": binary("RIGHT", "%s.str.slice(-%s)"),
	"MID": {
		Name: "MID", Kind: target.FuncScalar, MinArgs: 2, MaxArgs: 3,
		Emit: func(args []string) string {
			// Source positions are 1-based.
			if len(args) == 3 {
				return fmt.Sprintf("%s.str.slice(%s - 1, %s - 1 + %s)", args[0], args[1], args[1], args[2])
			}
			return fmt.Sprintf("%s.str.slice(%s - 1)", args[0], args[1])
		},
	},
	"SPLIT": {
		Name: "SPLIT", Kind: target.FuncScalar, MinArgs: 3, MaxArgs: 3,
		Emit: func(args []string) string {
			return fmt.Sprintf("%s.str.split(%s).str[%s - 1]", args[0], args[1], args[2])
		},
	},

	// Dates.
	"YEAR":    unary("YEAR", "%s.dt.year"),
	"MONTH":   unary("MONTH", "%s.dt.month"),
	"DAY":     unary("DAY", "%s.dt.day"),
	"QUARTER": unary("QUARTER", "%s.dt.quarter"),
	"WEEK":    unary("WEEK", "%s.dt.isocalendar().week"),
	"TODAY": {
		Name: "TODAY", Kind: target.FuncScalar, MinArgs: 0, MaxArgs: 0,
		Emit: func([]string) string { return "pd.Timestamp.today().normalize()" },
	},
	"NOW": {
		Name: "NOW", Kind: target.FuncScalar, MinArgs: 0, MaxArgs: 0,
		Emit: func([]string) string { return "pd.Timestamp.now()" },
	},
	"DATEPART": {
		Name: "DATEPART", Kind: target.FuncScalar, MinArgs: 2, MaxArgs: 2,
		Emit: func(args []string) string {
			if part, ok := literalPart(args[0]); ok {
				return fmt.Sprintf("%s.dt.%s", args[1], part)
			}
			return fmt.Sprintf("getattr(%s.dt, %s)", args[1], args[0])
		},
	},
	"DATEDIFF": {
		Name: "DATEDIFF", Kind: target.FuncScalar, MinArgs: 3, MaxArgs: 3,
		Emit: func(args []string) string {
			start, end := args[1], args[2]
			part, _ := literalPart(args[0])
			switch part {
			case "year":
				return fmt.Sprintf("(%s.dt.year - %s.dt.year)", end, start)
			case "month":
				return fmt.Sprintf("((%s.dt.year - %s.dt.year) * 12 + (%s.dt.month - %s.dt.month))",
					end, start, end, start)
			default:
				return fmt.Sprintf("(%s - %s).dt.days", end, start)
			}
		},
	},
	"DATETRUNC": {
		Name: "DATETRUNC", Kind: target.FuncScalar, MinArgs: 2, MaxArgs: 2,
		Emit: func(args []string) string {
			if part, ok := literalPart(args[0]); ok {
				if freq, known := truncFreqs[part]; known {
					return fmt.Sprintf("%s.dt.to_period(%s).dt.to_timestamp()", args[1], pyString(freq))
				}
			}
			return fmt.Sprintf("%s.dt.normalize()", args[1])
		},
	},

	// Type conversions.
	"INT":   unary("INT", "%s.astype('Int64')"),
	"FLOAT": unary("FLOAT", "%s.astype('float64')"),
	"STR":   unary("STR", "%s.astype('string')"),
	"DATE":  unary("DATE", "pd.to_datetime(%s).dt.normalize()"),

	// Logic and null handling.
	"IIF": {
		Name: "IIF", Kind: target.FuncScalar, MinArgs: 3, MaxArgs: 3,
		Emit: func(args []string) string {
			return fmt.Sprintf("np.where(%s, %s, %s)", args[0], args[1], args[2])
		},
	},
	"IFNULL": binary("IFNULL", "%s.fillna(%s)"),
	"ISNULL": unary("ISNULL", "%s.isna()"),
	"ZN":     unary("ZN", "%s.fillna(0)"),

	// Windows.
	"RUNNING_SUM": window("RUNNING_SUM", "%s.cumsum()"),
	"RUNNING_AVG": window("RUNNING_AVG", "%s.expanding().mean()"),
	"RUNNING_MAX": window("RUNNING_MAX", "%s.cummax()"),
	"RUNNING_MIN": window("RUNNING_MIN", "%s.cummin()"),
	"RANK":        window("RANK", "%s.rank(ascending=False, method='min')"),
	"INDEX": {
		Name: "INDEX", Kind: target.FuncWindow, MinArgs: 0, MaxArgs: 0,
		Emit: func([]string) string { return "(np.arange(len(df)) + 1)" },
	},
}

// truncFreqs maps DATETRUNC parts to pandas period aliases.
var truncFreqs = map[string]string{
	"year":    "Y",
	"quarter": "Q",
	"month":   "M",
	"week":    "W",
	"day":     "D",
}

func aggregate(name, aggName string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 1, AggName: aggName,
		Emit: func(args []string) string {
			return fmt.Sprintf("%s.%s()", args[0], aggName)
		},
	}
}

func unary(name, format string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncScalar, MinArgs: 1, MaxArgs: 1,
		Emit: func(args []string) string {
			return fmt.Sprintf(format, args[0])
		},
	}
}

func binary(name, format string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncScalar, MinArgs: 2, MaxArgs: 2,
		Emit: func(args []string) string {
			return fmt.Sprintf(format, args[0], args[1])
		},
	}
}

func window(name, format string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncWindow, MinArgs: 1, MaxArgs: 1,
		Emit: func(args []string) string {
			return fmt.Sprintf(format, args[0])
		},
	}
}

// literalPart extracts the content of a rendered Python string literal like
// 'day', lower-cased. Non-literal arguments return false.
func literalPart(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '\'' || arg[len(arg)-1] != '\'' {
		return "", false
	}
	inner := arg[1 : len(arg)-1]
	if strings.ContainsAny(inner, `\'`) {
		return "", false
	}
	return strings.ToLower(inner), true
}
