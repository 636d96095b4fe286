// Package download drives a traffic fraction download run.
//
// Every region is fetched one calendar month at a time through a FIFO job
// queue, one request in flight, with a courtesy delay between requests. A
// failed month is logged and skipped. Once a region's last month is done its
// accumulated points are passed to a SeriesHandler, usually a CSV writer.
package download
