// Package jsonnode provides a JSON tree that keeps object key order and can
// present a payload as either an object or a collection.
//
// A payload parsed as an object still answers AsArray with a one-element
// view holding that object, so a single record and a singleton list can be
// walked the same way. The reverse does not hold: AsObject on an array
// payload returns nil. Check IsArray before relying on AsObject.
//
//	node, err := jsonnode.Parse(body)
//	if err != nil {
//	    return err
//	}
//	for _, item := range node.AsArray() {
//	    name, _ := item.Get("name").Text()
//	    fmt.Println(name)
//	}
package jsonnode
