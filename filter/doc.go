/*
Package filter parses the compact filter expressions sent in the Filter request header.

An expression is a comma separated list of conditions. Each condition is a property
name, one comparator out of "=", ">" and "<", and a value that may be empty:

	name=Andrew,age>20

A condition is split at the LAST comparator character it contains, so the value of
"a=b=c" is "c" and its property name is "a=b". There is no escaping: a comma always
separates two conditions.
*/
package filter
