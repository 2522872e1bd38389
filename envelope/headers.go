package envelope

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/xerrors"
)

type valueFetcher interface {
	Get(key string) string
}

// PageInfo is the pagination metadata of a page response, read back by clients. Fields
// whose header was absent are -1.
type PageInfo struct {
	PageNumber int
	PageSize   int
	PageCount  int
	TotalCount int
}

func getInt(headers valueFetcher, fieldName string, defaultValue int) (int, error) {
	var valueInt int
	var err error

	value := headers.Get(fieldName)
	if value == "" {
		valueInt = defaultValue
	} else {
		valueInt, err = strconv.Atoi(value)
		if err != nil {
			return 0, xerrors.New(fieldName + " is not int")
		}
	}
	return valueInt, nil
}

// PageInfoFromHeaders reads the page headers written by PageWriter.
func PageInfoFromHeaders(headers valueFetcher) (pageInfo PageInfo, err error) {
	// These fields may not always be present. For this reason, we are going to use -1
	// as a default to flag that the value was not present in the headers.
	if pageInfo.PageNumber, err = getInt(headers, HeaderPageNumber, -1); err != nil {
		return PageInfo{}, err
	}
	if pageInfo.PageSize, err = getInt(headers, HeaderPageSize, -1); err != nil {
		return PageInfo{}, err
	}
	if pageInfo.PageCount, err = getInt(headers, HeaderPageCount, -1); err != nil {
		return PageInfo{}, err
	}
	if pageInfo.TotalCount, err = getInt(headers, HeaderTotalCount, -1); err != nil {
		return PageInfo{}, err
	}

	return pageInfo, nil
}

// LastModifiedFromHeaders reads the Last-Modified header written by DatedWriter. ok is
// false when the header is absent.
func LastModifiedFromHeaders(
	headers valueFetcher,
) (lastModified time.Time, ok bool, err error) {
	value := headers.Get(HeaderLastModified)
	if value == "" {
		return time.Time{}, false, nil
	}

	lastModified, err = http.ParseTime(value)
	if err != nil {
		return time.Time{}, false, xerrors.Errorf(
			"%v is not a valid http time: %w", HeaderLastModified, err,
		)
	}
	return lastModified, true, nil
}
